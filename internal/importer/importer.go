// Package importer reads component placement files in CSV or Excel form.
// It supports automatic delimiter detection, flexible column mapping with
// case-insensitive header aliases, and collects row-level errors and
// warnings instead of aborting on the first bad line.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/homalozoa/pcb-placement-generator/internal/model"
	"github.com/xuri/excelize/v2"
)

// Result holds the outcome of an import operation. Components preserve file
// order, which downstream is also the placement priority order.
type Result struct {
	Components []model.Component
	Errors     []string
	Warnings   []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// A value of -1 means the column is absent.
type ColumnMapping struct {
	Num      int
	RefDes   int
	Package  int
	X        int
	Y        int
	Layer    int
	Rotation int
	Value    int
}

// headerAliases maps canonical column roles to their accepted spellings
// (all lowercase, dots stripped). The set covers the pick-and-place export
// headers of the common EDA tools.
var headerAliases = map[string][]string{
	"num":      {"num", "no", "index", "#", "item"},
	"refdes":   {"refdes", "ref des", "ref", "designator", "reference", "refdes name"},
	"package":  {"partdecal", "package", "footprint", "decal", "pattern"},
	"x":        {"x", "pos x", "posx", "mid x", "midx", "center x", "x (mm)"},
	"y":        {"y", "pos y", "posy", "mid y", "midy", "center y", "y (mm)"},
	"layer":    {"layer", "side", "tb", "placement layer"},
	"rotation": {"orient", "orientation", "rotation", "rot", "angle"},
	"value":    {"value", "val", "comment"},
}

// DetectCSVDelimiter determines the most likely delimiter by trying comma,
// semicolon, tab and pipe and scoring each on how consistent the resulting
// column counts are across lines.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// normalizeHeader lowercases a header cell and strips trailing dots, so that
// "Orient." and "orient" compare equal.
func normalizeHeader(cell string) string {
	s := strings.ToLower(strings.TrimSpace(cell))
	return strings.TrimRight(s, ".")
}

// DetectColumns examines a header row and returns a ColumnMapping. Matching
// is case-insensitive against the alias table. Returns the mapping and true
// if a header was detected, or the classic positional mapping
// (Num, RefDes, PartDecal, X, Y, Layer, Orient., Value) and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Num: -1, RefDes: -1, Package: -1, X: -1,
		Y: -1, Layer: -1, Rotation: -1, Value: -1,
	}

	assign := func(role string, idx int) {
		switch role {
		case "num":
			if mapping.Num == -1 {
				mapping.Num = idx
			}
		case "refdes":
			if mapping.RefDes == -1 {
				mapping.RefDes = idx
			}
		case "package":
			if mapping.Package == -1 {
				mapping.Package = idx
			}
		case "x":
			if mapping.X == -1 {
				mapping.X = idx
			}
		case "y":
			if mapping.Y == -1 {
				mapping.Y = idx
			}
		case "layer":
			if mapping.Layer == -1 {
				mapping.Layer = idx
			}
		case "rotation":
			if mapping.Rotation == -1 {
				mapping.Rotation = idx
			}
		case "value":
			if mapping.Value == -1 {
				mapping.Value = idx
			}
		}
	}

	isHeader := false
	for i, cell := range row {
		normalized := normalizeHeader(cell)
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					assign(role, i)
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			Num: 0, RefDes: 1, Package: 2, X: 3,
			Y: 4, Layer: 5, Rotation: 6, Value: 7,
		}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a Component from a row using the given column mapping.
// Returns the component, an error message, and a warning message; the error
// message is empty on success.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, ordinal int) (model.Component, string, string) {
	refdes := getCell(row, mapping.RefDes)
	if refdes == "" {
		return model.Component{}, fmt.Sprintf("%s: missing reference designator", rowLabel), ""
	}

	xStr := getCell(row, mapping.X)
	x, err := strconv.ParseFloat(xStr, 64)
	if err != nil {
		return model.Component{}, fmt.Sprintf("%s: invalid X coordinate %q", rowLabel, xStr), ""
	}
	yStr := getCell(row, mapping.Y)
	y, err := strconv.ParseFloat(yStr, 64)
	if err != nil {
		return model.Component{}, fmt.Sprintf("%s: invalid Y coordinate %q", rowLabel, yStr), ""
	}

	layerStr := getCell(row, mapping.Layer)
	if layerStr == "" {
		return model.Component{}, fmt.Sprintf("%s: missing layer", rowLabel), ""
	}
	layer, ok := model.ParseLayer(layerStr)
	if !ok {
		return model.Component{}, fmt.Sprintf("%s: unknown layer %q", rowLabel, layerStr), ""
	}

	num := ordinal + 1
	if numStr := getCell(row, mapping.Num); numStr != "" {
		if parsed, err := strconv.ParseFloat(numStr, 64); err == nil {
			num = int(parsed)
		}
	}

	var warning string
	rotation := 0.0
	if rotStr := getCell(row, mapping.Rotation); rotStr != "" {
		parsed, err := strconv.ParseFloat(rotStr, 64)
		if err != nil {
			warning = fmt.Sprintf("%s: invalid rotation %q, defaulting to 0", rowLabel, rotStr)
		} else {
			rotation = parsed
		}
	}

	pkg := getCell(row, mapping.Package)
	value := getCell(row, mapping.Value)

	return model.NewComponent(num, refdes, pkg, x, y, layer, rotation, value), "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports components from a CSV placement file. The delimiter is
// auto-detected and columns are mapped by header names; a leading UTF-8 BOM
// is tolerated.
func ImportCSV(path string) Result {
	result := Result{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open file: %v", err))
		return result
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "line", result.Warnings)
}

// ImportCSVFromReader imports components from a CSV stream with a known
// delimiter. Useful for testing and piped input.
func ImportCSVFromReader(r io.Reader, delimiter rune) Result {
	result := Result{}

	csvReader := csv.NewReader(r)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "line", nil)
}

// ImportExcel imports components from an Excel (.xlsx) placement file,
// reading the first sheet with the same column detection as CSV.
func ImportExcel(path string) Result {
	result := Result{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "row", nil)
}

// Import dispatches on the file extension: .xlsx and .xls go through the
// Excel reader, everything else is treated as CSV.
func Import(path string) Result {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") {
		return ImportExcel(path)
	}
	return ImportCSV(path)
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) Result {
	result := Result{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "no data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1

		missing := []string{}
		if mapping.RefDes == -1 {
			missing = append(missing, "RefDes")
		}
		if mapping.X == -1 {
			missing = append(missing, "X")
		}
		if mapping.Y == -1 {
			missing = append(missing, "Y")
		}
		if mapping.Layer == -1 {
			missing = append(missing, "Layer")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 4 {
		// No recognized header. If the X column of the first row is not
		// numeric this is probably an unrecognized header: skip it but keep
		// the positional mapping.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][3]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "unrecognized header row, assuming positional columns")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		comp, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Components))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Components = append(result.Components, comp)
	}

	if len(result.Components) == 0 {
		result.Errors = append(result.Errors, "no valid component rows found")
	}

	return result
}
