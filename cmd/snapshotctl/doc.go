// Command snapshotctl inspects and edits the aspect ratio snapshot database
// used by the media stage server.
//
// Usage:
//
//	snapshotctl <command> [args]
//
// Commands:
//
//	list [limit]               List stored snapshots, newest first (default 50).
//	get <id>                   Show the snapshot for one attachment.
//	put <id> <width> <height>  Store a snapshot measured out of band.
//	delete <id>                Forget one snapshot.
//	purge [--yes]              Delete every snapshot. Without --yes the
//	                           command asks for confirmation and refuses to
//	                           run when stdin is not a terminal.
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: /database)
//
// The server caches snapshots in memory, so edits made while it is running
// become visible once the cached entry expires (SNAPSHOT_CACHE_TTL).
package main
