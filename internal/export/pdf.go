// Package export renders finished label placements to output documents:
// vector PDF assembly drawings and DXF overlays for CAD import.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/homalozoa/pcb-placement-generator/internal/layout"
	"github.com/homalozoa/pcb-placement-generator/internal/model"
)

// Page layout constants (A3 landscape in mm).
const (
	pageWidth    = 420.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	infoBoxW     = 52.0
	qrSize       = 14.0
	ptPerMM      = 2.83 // font points per board millimetre
)

// Drawing is one renderable layer view: the placements of a single board
// side for a single label field.
type Drawing struct {
	Source     string // dataset name, for the title and traceability code
	Field      model.LabelField
	Layer      model.Layer
	Placements []layout.Placement
	FontSize   float64
}

// Title returns the page heading, e.g. "PCB Reference Designator Layout - Top Layer".
func (d Drawing) Title() string {
	var suffix string
	switch d.Field {
	case model.FieldPackage:
		suffix = "Package Layout"
	case model.FieldValue:
		suffix = "Component Value Layout"
	default:
		suffix = "Reference Designator Layout"
	}
	return fmt.Sprintf("PCB %s - %s Layer", suffix, d.Layer)
}

// FileName returns the conventional output name, e.g. "RefDes_Top".
func (d Drawing) FileName() string {
	return fmt.Sprintf("%s_%s", d.Field, d.Layer)
}

// DistinctTexts counts distinct label strings, used for the info box
// (package type count or unique value count, depending on the field).
func (d Drawing) DistinctTexts() int {
	seen := make(map[string]bool, len(d.Placements))
	for _, p := range d.Placements {
		seen[p.Request.Text] = true
	}
	return len(seen)
}

// Options controls rendering behaviour.
type Options struct {
	MarginRatio float64 // plot margin as a share of the coordinate range
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() Options {
	return Options{MarginRatio: 0.15}
}

// plotFrame maps board coordinates onto the page drawing area.
type plotFrame struct {
	minX, maxY float64 // board-space origin corner (top-left of the plot)
	scale      float64 // page mm per board mm
	offsetX    float64 // page X of the plot's left edge
	offsetY    float64 // page Y of the plot's top edge
	plotW      float64 // page mm
	plotH      float64 // page mm
}

// toPage converts a board coordinate to page coordinates. Board Y grows
// upward, page Y grows downward, so the Y axis flips.
func (f plotFrame) toPage(x, y float64) (float64, float64) {
	return f.offsetX + (x-f.minX)*f.scale, f.offsetY + (f.maxY-y)*f.scale
}

// newPlotFrame computes the scale and offsets that fit the placement bounds
// (anchor and final positions alike) into the page drawing area.
func newPlotFrame(placements []layout.Placement, marginRatio float64) plotFrame {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range placements {
		for _, pt := range []layout.Point{p.Request.Anchor, p.Position} {
			minX = math.Min(minX, pt.X)
			maxX = math.Max(maxX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxY = math.Max(maxY, pt.Y)
		}
	}

	xRange := maxX - minX
	yRange := maxY - minY
	if xRange == 0 {
		xRange = 10
	}
	if yRange == 0 {
		yRange = 10
	}
	minX -= xRange * marginRatio
	maxX += xRange * marginRatio
	minY -= yRange * marginRatio
	maxY += yRange * marginRatio

	drawW := pageWidth - marginLeft - marginRight
	drawH := pageHeight - drawAreaTop - marginBottom
	scale := math.Min(drawW/(maxX-minX), drawH/(maxY-minY))

	plotW := (maxX - minX) * scale
	plotH := (maxY - minY) * scale

	return plotFrame{
		minX:    minX,
		maxY:    maxY,
		scale:   scale,
		offsetX: marginLeft + (drawW-plotW)/2,
		offsetY: drawAreaTop,
		plotW:   plotW,
		plotH:   plotH,
	}
}

// WritePDF renders one drawing to a single-page PDF at path.
func WritePDF(path string, d Drawing, opts Options) error {
	pdf := fpdf.New("L", "mm", "A3", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	if len(d.Placements) == 0 {
		pdf.SetFont("Helvetica", "", 16)
		pdf.SetXY(marginLeft, pageHeight/2)
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 8, "No components on this layer", "", 0, "C", false, 0, "")
		renderHeader(pdf, d)
		return pdf.OutputFileAndClose(path)
	}

	renderHeader(pdf, d)

	frame := newPlotFrame(d.Placements, opts.MarginRatio)
	renderGrid(pdf, frame)
	renderLabels(pdf, d, frame)
	if err := renderInfoBox(pdf, d); err != nil {
		return err
	}
	renderFooter(pdf)

	return pdf.OutputFileAndClose(path)
}

// renderHeader draws the page title and source line.
func renderHeader(pdf *fpdf.Fpdf, d Drawing) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, d.Title(), "", 0, "C", false, 0, "")

	if d.Source != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.SetXY(marginLeft, marginTop+headerHeight-3)
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, d.Source, "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

// niceStep picks a 1/2/5-series grid step so roughly ten gridlines span the range.
func niceStep(boardRange float64) float64 {
	if boardRange <= 0 {
		return 1
	}
	raw := boardRange / 10
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch {
	case raw/mag >= 5:
		return 5 * mag
	case raw/mag >= 2:
		return 2 * mag
	default:
		return mag
	}
}

// renderGrid draws the coordinate grid with axis labels in board millimetres.
func renderGrid(pdf *fpdf.Fpdf, f plotFrame) {
	boardW := f.plotW / f.scale
	boardH := f.plotH / f.scale
	maxXBoard := f.minX + boardW
	minYBoard := f.maxY - boardH

	// Plot border
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.4)
	pdf.Rect(f.offsetX, f.offsetY, f.plotW, f.plotH, "D")

	step := niceStep(math.Max(boardW, boardH))

	pdf.SetDrawColor(210, 210, 210)
	pdf.SetLineWidth(0.15)
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(130, 130, 130)

	for x := math.Ceil(f.minX/step) * step; x <= maxXBoard; x += step {
		px, _ := f.toPage(x, 0)
		pdf.Line(px, f.offsetY, px, f.offsetY+f.plotH)
		pdf.SetXY(px-6, f.offsetY+f.plotH+1)
		pdf.CellFormat(12, 3, fmt.Sprintf("%.0f", x), "", 0, "C", false, 0, "")
	}
	for y := math.Ceil(minYBoard/step) * step; y <= f.maxY; y += step {
		_, py := f.toPage(0, y)
		pdf.Line(f.offsetX, py, f.offsetX+f.plotW, py)
		pdf.SetXY(f.offsetX-11, py-1.5)
		pdf.CellFormat(10, 3, fmt.Sprintf("%.0f", y), "", 0, "R", false, 0, "")
	}

	// Axis captions
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(f.offsetX+f.plotW/2-10, f.offsetY+f.plotH+4.5)
	pdf.CellFormat(20, 4, "X (mm)", "", 0, "C", false, 0, "")
	pdf.TransformBegin()
	pdf.TransformRotate(90, f.offsetX-12, f.offsetY+f.plotH/2)
	pdf.SetXY(f.offsetX-22, f.offsetY+f.plotH/2-2)
	pdf.CellFormat(20, 4, "Y (mm)", "", 0, "C", false, 0, "")
	pdf.TransformEnd()
	pdf.SetTextColor(0, 0, 0)
}

// renderLabels draws every placed label: a white backing box for contrast,
// then the text rotated about its own center so it reads correctly.
func renderLabels(pdf *fpdf.Fpdf, d Drawing, f plotFrame) {
	fontPt := d.FontSize * f.scale

	for _, p := range d.Placements {
		px, py := f.toPage(p.Position.X, p.Position.Y)

		pdf.SetFont("Helvetica", "B", fontPt)
		textW := pdf.GetStringWidth(p.Request.Text)
		boxH := d.FontSize / ptPerMM * f.scale // text height on the page in mm

		pdf.TransformBegin()
		pdf.TransformRotate(p.TextRotation, px, py)

		// Backing box keeps labels readable where the board silk is dense.
		pdf.SetFillColor(255, 255, 255)
		pdf.SetDrawColor(60, 60, 60)
		pdf.SetLineWidth(0.08)
		pdf.Rect(px-textW/2-0.3, py-boxH/2-0.2, textW+0.6, boxH+0.4, "FD")

		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(px-textW/2, py-boxH/2)
		pdf.CellFormat(textW, boxH, p.Request.Text, "", 0, "C", false, 0, "")

		pdf.TransformEnd()

		// Tick the true anchor when the label had to move off it.
		if p.Position != p.Request.Anchor {
			ax, ay := f.toPage(p.Request.Anchor.X, p.Request.Anchor.Y)
			pdf.SetDrawColor(200, 0, 0)
			pdf.SetLineWidth(0.1)
			pdf.Line(ax-0.7, ay, ax+0.7, ay)
			pdf.Line(ax, ay-0.7, ax, ay+0.7)
		}
	}
}

// traceInfo is the payload encoded into the info box QR code, identifying
// which dataset and view a printed drawing came from.
type traceInfo struct {
	Source   string `json:"source"`
	Field    string `json:"field"`
	Layer    string `json:"layer"`
	Total    int    `json:"total"`
	Distinct int    `json:"distinct"`
}

// renderInfoBox draws the corner summary (counts plus traceability QR).
func renderInfoBox(pdf *fpdf.Fpdf, d Drawing) error {
	x := marginLeft + 2
	y := drawAreaTop + 2

	pdf.SetFillColor(255, 252, 220)
	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x, y, infoBoxW, qrSize+6, "FD")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x+2, y+2)
	pdf.CellFormat(infoBoxW-qrSize-6, 4, fmt.Sprintf("Total: %d", len(d.Placements)), "", 2, "L", false, 0, "")

	distinctLabel := ""
	switch d.Field {
	case model.FieldPackage:
		distinctLabel = fmt.Sprintf("Package Types: %d", d.DistinctTexts())
	case model.FieldValue:
		distinctLabel = fmt.Sprintf("Unique Values: %d", d.DistinctTexts())
	}
	if distinctLabel != "" {
		pdf.SetXY(x+2, y+6)
		pdf.CellFormat(infoBoxW-qrSize-6, 4, distinctLabel, "", 0, "L", false, 0, "")
	}

	info := traceInfo{
		Source:   d.Source,
		Field:    d.Field.String(),
		Layer:    d.Layer.String(),
		Total:    len(d.Placements),
		Distinct: d.DistinctTexts(),
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal trace info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%s", d.Field, d.Layer)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x+infoBoxW-qrSize-1, y+3, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	return nil
}

// renderFooter draws the generator credit line.
func renderFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom+4)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by pcbplot - PCB Placement Label Generator", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// SummaryRow is one generated drawing's entry in the run summary.
type SummaryRow struct {
	Drawing Drawing
	Forced  int
}

// WriteSummaryPDF renders a one-page overview table of every drawing
// produced in a run: counts, chosen font size and forced placements.
func WriteSummaryPDF(path string, source string, rows []SummaryRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no drawings to summarize")
	}

	pdf := fpdf.New("L", "mm", "A3", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Placement Summary: "+source, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	colWidths := []float64{60, 30, 30, 35, 40, 35}
	headers := []string{"Drawing", "Layer", "Labels", "Distinct", "Font Size (pt)", "Forced"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range rows {
		xPos = marginLeft
		rowData := []string{
			row.Drawing.Title(),
			row.Drawing.Layer.String(),
			fmt.Sprintf("%d", len(row.Drawing.Placements)),
			fmt.Sprintf("%d", row.Drawing.DistinctTexts()),
			fmt.Sprintf("%.2f", row.Drawing.FontSize),
			fmt.Sprintf("%d", row.Forced),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	// Forced placements mean the drawing is overcrowded at this scale.
	totalForced := 0
	for _, row := range rows {
		totalForced += row.Forced
	}
	if totalForced > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		warn := fmt.Sprintf("WARNING: %d labels exhausted the search budget and were force-placed", totalForced)
		pdf.CellFormat(300, 7, warn, "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	renderFooter(pdf)
	return pdf.OutputFileAndClose(path)
}
