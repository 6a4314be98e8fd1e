package layout

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"media-stage/internal/aspect"
	"media-stage/internal/geometry"
	"media-stage/internal/mediatypes"
)

const (
	// MaxGridCells is the number of cells a grid lays out before overflowing.
	MaxGridCells = 4

	// GridColumns is the number of columns in a multi-attachment grid.
	GridColumns = 2

	DefaultMaxSingleHeight = 400.0
	DefaultGridCellSize    = 160.0
	DefaultGridSpacing     = 4.0
	DefaultCornerRadius    = 8.0
)

// Variant identifies the layout chosen for an attachment set.
type Variant string

const (
	VariantEmpty        Variant = "empty"
	VariantSingle       Variant = "single"
	VariantGrid         Variant = "grid"
	VariantGridOverflow Variant = "grid-overflow"
)

// Config holds the fixed geometry constants of the planner.
type Config struct {
	MaxSingleHeight float64
	GridCellSize    float64
	GridSpacing     float64
	CornerRadius    float64
}

// DefaultConfig returns the standard feed geometry.
func DefaultConfig() Config {
	return Config{
		MaxSingleHeight: DefaultMaxSingleHeight,
		GridCellSize:    DefaultGridCellSize,
		GridSpacing:     DefaultGridSpacing,
		CornerRadius:    DefaultCornerRadius,
	}
}

// Cell is one laid-out attachment. Frame is relative to the container's
// top-left corner. Overflow is non-zero only on the last cell of a
// truncated grid.
type Cell struct {
	Index        int             `json:"index"`
	AttachmentID string          `json:"attachmentId"`
	Kind         mediatypes.Kind `json:"kind"`
	Frame        geometry.Rect   `json:"frame"`
	CornerRadius float64         `json:"cornerRadius"`
	Ratio        aspect.Ratio    `json:"ratio,omitempty"`
	Overflow     int             `json:"overflow,omitempty"`
	Placeholder  bool            `json:"placeholder,omitempty"`
}

// Plan is the frozen geometry for one attachment set.
type Plan struct {
	Key            string        `json:"key"`
	Variant        Variant       `json:"variant"`
	ContainerWidth float64       `json:"containerWidth"`
	Size           geometry.Size `json:"size"`
	Count          int           `json:"count"`
	Cells          []Cell        `json:"cells"`
}

// Cell returns the cell laid out for attachmentID.
func (p Plan) Cell(attachmentID string) (Cell, bool) {
	for _, c := range p.Cells {
		if c.AttachmentID == attachmentID {
			return c, true
		}
	}
	return Cell{}, false
}

// OverflowCell returns the cell carrying the overflow badge, if any.
func (p Plan) OverflowCell() (Cell, bool) {
	if n := len(p.Cells); n > 0 && p.Cells[n-1].Overflow > 0 {
		return p.Cells[n-1], true
	}
	return Cell{}, false
}

func (p Plan) clone() Plan {
	cells := make([]Cell, len(p.Cells))
	copy(cells, p.Cells)
	p.Cells = cells
	return p
}

// Observer records planner activity.
type Observer interface {
	ObservePlan(variant Variant, cells, placeholders int)
}

// Planner computes Plans from a fixed Config.
type Planner struct {
	config   Config
	observer Observer
}

// NewPlanner creates a Planner. Non-positive config values fall back to defaults.
func NewPlanner(config Config, observer Observer) *Planner {
	def := DefaultConfig()
	if !(config.MaxSingleHeight > 0) {
		config.MaxSingleHeight = def.MaxSingleHeight
	}
	if !(config.GridCellSize > 0) {
		config.GridCellSize = def.GridCellSize
	}
	if !(config.GridSpacing >= 0) {
		config.GridSpacing = def.GridSpacing
	}
	if !(config.CornerRadius >= 0) {
		config.CornerRadius = def.CornerRadius
	}
	return &Planner{config: config, observer: observer}
}

// Config returns the planner's geometry constants.
func (p *Planner) Config() Config {
	return p.config
}

// Plan lays out attachments. A ratio missing from ratios marks that
// attachment as not yet resolvable and yields a placeholder cell.
func (p *Planner) Plan(attachments []mediatypes.Attachment, ratios map[string]aspect.Ratio, containerWidth float64) Plan {
	if !(containerWidth > 0) || math.IsInf(containerWidth, 0) {
		containerWidth = 0
	}

	plan := Plan{
		Key:            Key(attachments, ratios, containerWidth),
		ContainerWidth: containerWidth,
		Count:          len(attachments),
	}

	switch n := len(attachments); {
	case n == 0:
		plan.Variant = VariantEmpty
		plan.Cells = []Cell{}
	case n == 1:
		plan.Variant = VariantSingle
		plan.Cells = []Cell{p.singleCell(attachments[0], ratios, containerWidth)}
	default:
		plan.Variant = VariantGrid
		if n > MaxGridCells {
			plan.Variant = VariantGridOverflow
		}
		plan.Cells = p.gridCells(attachments, ratios, containerWidth)
	}

	plan.Size = geometry.Size{Width: containerWidth, Height: contentHeight(plan.Cells)}

	if p.observer != nil {
		placeholders := 0
		for _, c := range plan.Cells {
			if c.Placeholder {
				placeholders++
			}
		}
		p.observer.ObservePlan(plan.Variant, len(plan.Cells), placeholders)
	}

	return plan
}

func (p *Planner) singleCell(att mediatypes.Attachment, ratios map[string]aspect.Ratio, containerWidth float64) Cell {
	cell := Cell{
		AttachmentID: att.ID,
		Kind:         mediatypes.ResolveKind(att),
		CornerRadius: p.config.CornerRadius,
	}

	ratio, ok := ratios[att.ID]
	if !ok || !ratio.Valid() {
		edge := p.gridEdge(containerWidth)
		cell.Frame = geometry.Rect{Width: edge, Height: edge}
		cell.Placeholder = true
		return cell
	}

	height := math.Min(containerWidth/float64(ratio), p.config.MaxSingleHeight)
	cell.Ratio = ratio
	cell.Frame = geometry.Rect{Width: containerWidth, Height: height}
	return cell
}

func (p *Planner) gridCells(attachments []mediatypes.Attachment, ratios map[string]aspect.Ratio, containerWidth float64) []Cell {
	count := len(attachments)
	if count > MaxGridCells {
		count = MaxGridCells
	}

	edge := p.gridEdge(containerWidth)
	stride := edge + p.config.GridSpacing

	cells := make([]Cell, count)
	for i := 0; i < count; i++ {
		att := attachments[i]
		col := i % GridColumns
		row := i / GridColumns

		cell := Cell{
			Index:        i,
			AttachmentID: att.ID,
			Kind:         mediatypes.ResolveKind(att),
			Frame:        geometry.Rect{X: float64(col) * stride, Y: float64(row) * stride, Width: edge, Height: edge},
			CornerRadius: p.config.CornerRadius,
		}
		if ratio, ok := ratios[att.ID]; ok && ratio.Valid() {
			cell.Ratio = ratio
		} else {
			cell.Placeholder = true
		}
		cells[i] = cell
	}

	if len(attachments) > MaxGridCells {
		cells[count-1].Overflow = len(attachments) - MaxGridCells
	}
	return cells
}

// gridEdge is the configured cell size, shrunk only when two columns would
// not fit the container.
func (p *Planner) gridEdge(containerWidth float64) float64 {
	edge := p.config.GridCellSize
	if containerWidth > 0 {
		fit := (containerWidth - p.config.GridSpacing*float64(GridColumns-1)) / float64(GridColumns)
		if fit > 0 && fit < edge {
			edge = fit
		}
	}
	return edge
}

func contentHeight(cells []Cell) float64 {
	height := 0.0
	for _, c := range cells {
		height = math.Max(height, c.Frame.MaxY())
	}
	return height
}

// Key returns a stable identity for a planner input. Two inputs with the
// same key produce bit-identical plans.
func Key(attachments []mediatypes.Attachment, ratios map[string]aspect.Ratio, containerWidth float64) string {
	d := xxhash.New()
	var buf [8]byte

	for _, att := range attachments {
		_, _ = d.WriteString(att.ID)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(string(att.Kind))
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(att.URL)
		_, _ = d.Write([]byte{0})

		bits := uint64(0)
		if r, ok := ratios[att.ID]; ok && r.Valid() {
			bits = math.Float64bits(float64(r))
		}
		binary.LittleEndian.PutUint64(buf[:], bits)
		_, _ = d.Write(buf[:])
	}

	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(containerWidth))
	_, _ = d.Write(buf[:])

	return fmt.Sprintf("%d-%016x", len(attachments), d.Sum64())
}
