package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"media-stage/internal/aspect"
	"media-stage/internal/snapshots"

	"golang.org/x/term"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default database directory path
	defaultDatabaseDir = "/database"
	// Default number of rows printed by list
	defaultListLimit = 50
)

// store is the subset of the snapshot database the commands use.
type store interface {
	Get(ctx context.Context, attachmentID string) (snapshots.Entry, error)
	Put(ctx context.Context, entry snapshots.Entry) error
	Delete(ctx context.Context, attachmentID string) error
	List(ctx context.Context, limit int) ([]snapshots.Entry, error)
	Count(ctx context.Context) (int, error)
	Purge(ctx context.Context) (int64, error)
}

// cli carries the streams a command reads from and writes to.
type cli struct {
	out         io.Writer
	errOut      io.Writer
	in          io.Reader
	interactive bool
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	dbPath := databasePath(os.Getenv("DATABASE_DIR"))
	db, err := snapshots.OpenSQLite(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open snapshot database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", filepath.Dir(dbPath))
		os.Exit(1)
	}

	c := cli{
		out:         os.Stdout,
		errOut:      os.Stderr,
		in:          os.Stdin,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	code := c.run(ctx, db, os.Args[1:])

	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
	os.Exit(code)
}

func databasePath(dir string) string {
	if dir == "" {
		dir = defaultDatabaseDir
	}
	return filepath.Join(dir, "snapshots.db")
}

// run executes one command and returns the process exit code.
func (c cli) run(ctx context.Context, db store, args []string) int {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var err error
	switch args[0] {
	case "list":
		err = c.list(ctx, db, args[1:])
	case "get":
		err = c.get(ctx, db, args[1:])
	case "put":
		err = c.put(ctx, db, args[1:])
	case "delete":
		err = c.remove(ctx, db, args[1:])
	case "purge":
		err = c.purge(ctx, db, args[1:])
	default:
		fmt.Fprintf(c.errOut, "Unknown command: %s\n", sanitizeCommand(args[0]))
		printUsage(c.errOut)
		return 1
	}

	if err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (c cli) list(ctx context.Context, db store, args []string) error {
	limit := defaultListLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid limit %q", args[0])
		}
		limit = n
	}

	total, err := db.Count(ctx)
	if err != nil {
		return err
	}
	entries, err := db.List(ctx, limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ATTACHMENT\tRATIO\tSIZE\tSOURCE\tUPDATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%.4f\t%s\t%s\t%s\n", e.AttachmentID, float64(e.Ratio), size(e), e.Source, e.UpdatedAt.Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\n%d of %d snapshots\n", len(entries), total)
	return nil
}

func (c cli) get(ctx context.Context, db store, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: get <attachment-id>")
	}
	e, err := db.Get(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Attachment: %s\n", e.AttachmentID)
	fmt.Fprintf(c.out, "Ratio:      %.4f\n", float64(e.Ratio))
	fmt.Fprintf(c.out, "Size:       %s\n", size(e))
	fmt.Fprintf(c.out, "Source:     %s\n", e.Source)
	fmt.Fprintf(c.out, "Updated:    %s\n", e.UpdatedAt.Format(time.RFC3339))
	return nil
}

func (c cli) put(ctx context.Context, db store, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: put <attachment-id> <width> <height>")
	}
	width, werr := strconv.Atoi(args[1])
	height, herr := strconv.Atoi(args[2])
	if werr != nil || herr != nil {
		return errors.New("width and height must be integers")
	}

	ratio := aspect.FromSize(float64(width), float64(height))
	if !ratio.Valid() {
		return fmt.Errorf("%dx%d: %w", width, height, snapshots.ErrInvalidRatio)
	}

	entry := snapshots.Entry{
		AttachmentID: args[0],
		Ratio:        ratio,
		Width:        width,
		Height:       height,
		Source:       "manual",
		UpdatedAt:    time.Now(),
	}
	if err := db.Put(ctx, entry); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Stored %s ratio %.4f\n", entry.AttachmentID, float64(ratio))
	return nil
}

func (c cli) remove(ctx context.Context, db store, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <attachment-id>")
	}
	if err := db.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted %s\n", args[0])
	return nil
}

func (c cli) purge(ctx context.Context, db store, args []string) error {
	confirmed := len(args) > 0 && args[0] == "--yes"
	if !confirmed {
		if !c.interactive {
			return errors.New("refusing to purge without --yes when stdin is not a terminal")
		}
		fmt.Fprint(c.out, "Delete every stored snapshot? Type 'purge' to confirm: ")
		line, err := bufio.NewReader(c.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if strings.TrimSpace(line) != "purge" {
			fmt.Fprintln(c.out, "Aborted.")
			return nil
		}
	}

	n, err := db.Purge(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Purged %d snapshots\n", n)
	return nil
}

func size(e snapshots.Entry) string {
	if e.Width > 0 && e.Height > 0 {
		return fmt.Sprintf("%dx%d", e.Width, e.Height)
	}
	return "-"
}

// sanitizeCommand returns a safe representation of a command string for display.
// Any character that is not alphanumeric, a hyphen, or an underscore becomes '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Media Stage Snapshot Management")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: snapshotctl <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list [limit]                  - List stored snapshots, newest first")
	fmt.Fprintln(w, "  get <id>                      - Show one snapshot")
	fmt.Fprintln(w, "  put <id> <width> <height>     - Store a snapshot from pixel dimensions")
	fmt.Fprintln(w, "  delete <id>                   - Delete one snapshot")
	fmt.Fprintln(w, "  purge [--yes]                 - Delete every snapshot")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
}
