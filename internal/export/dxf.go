package export

import (
	"fmt"

	"github.com/yofu/dxf"
	dxfdrawing "github.com/yofu/dxf/drawing"

	"github.com/homalozoa/pcb-placement-generator/internal/layout"
)

// crossTick is the half-length in mm of the anchor marker drawn for labels
// that were displaced from their true coordinate.
const crossTick = 0.5

// WriteDXF exports a drawing as a DXF overlay for CAD import: one TEXT
// entity per placed label on a layer named after the board side, plus small
// cross ticks at the true anchors of displaced labels. Coordinates stay in
// board millimetres so the overlay aligns with the source design.
func WriteDXF(path string, d Drawing) error {
	drawing := dxf.NewDrawing()

	layerName := fmt.Sprintf("LABELS_%s_%s", d.Field, d.Layer)
	if _, err := drawing.AddLayer(layerName, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer %q: %w", layerName, err)
	}

	// Text height in mm derived from the point size used on the PDF side.
	textHeight := d.FontSize / ptPerMM

	for _, p := range d.Placements {
		if _, err := drawing.Text(p.Request.Text, p.Position.X, p.Position.Y, 0.0, textHeight); err != nil {
			return fmt.Errorf("failed to write text %q: %w", p.Request.Text, err)
		}
		if p.Position != p.Request.Anchor {
			writeAnchorCross(drawing, p.Request.Anchor)
		}
	}

	if err := drawing.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

// writeAnchorCross marks the true coordinate of a displaced label.
// Errors are ignored: the text entities are the payload, the ticks are a
// visual aid.
func writeAnchorCross(d *dxfdrawing.Drawing, a layout.Point) {
	d.Line(a.X-crossTick, a.Y, 0.0, a.X+crossTick, a.Y, 0.0)
	d.Line(a.X, a.Y-crossTick, 0.0, a.X, a.Y+crossTick, 0.0)
}
