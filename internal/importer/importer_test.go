package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/homalozoa/pcb-placement-generator/internal/model"
	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("RefDes,PartDecal,X,Y,Layer\nR1,c0402,10.5,20.0,Top\nC1,c0603,15.0,25.0,Bottom\n")
	got := DetectCSVDelimiter(data)
	if got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("RefDes;PartDecal;X;Y;Layer\nR1;c0402;10,5;20,0;Top\nC1;c0603;15,0;25,0;Bottom\n")
	got := DetectCSVDelimiter(data)
	if got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("RefDes\tPartDecal\tX\tY\tLayer\nR1\tc0402\t10.5\t20.0\tTop\n")
	got := DetectCSVDelimiter(data)
	if got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Pipe(t *testing.T) {
	data := []byte("RefDes|PartDecal|X|Y|Layer\nR1|c0402|10.5|20.0|Top\n")
	got := DetectCSVDelimiter(data)
	if got != '|' {
		t.Errorf("expected pipe delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Num", "RefDes", "PartDecal", "X", "Y", "Layer", "Orient.", "Value"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Num != 0 {
		t.Errorf("expected Num at 0, got %d", mapping.Num)
	}
	if mapping.RefDes != 1 {
		t.Errorf("expected RefDes at 1, got %d", mapping.RefDes)
	}
	if mapping.Package != 2 {
		t.Errorf("expected Package at 2, got %d", mapping.Package)
	}
	if mapping.X != 3 {
		t.Errorf("expected X at 3, got %d", mapping.X)
	}
	if mapping.Y != 4 {
		t.Errorf("expected Y at 4, got %d", mapping.Y)
	}
	if mapping.Layer != 5 {
		t.Errorf("expected Layer at 5, got %d", mapping.Layer)
	}
	if mapping.Rotation != 6 {
		t.Errorf("expected Rotation at 6, got %d", mapping.Rotation)
	}
	if mapping.Value != 7 {
		t.Errorf("expected Value at 7, got %d", mapping.Value)
	}
}

func TestDetectColumns_CaseInsensitive(t *testing.T) {
	row := []string{"REFDES", "FOOTPRINT", "X", "Y", "SIDE"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.RefDes != 0 {
		t.Errorf("expected RefDes at 0, got %d", mapping.RefDes)
	}
	if mapping.Package != 1 {
		t.Errorf("expected Package at 1, got %d", mapping.Package)
	}
	if mapping.Layer != 4 {
		t.Errorf("expected Layer at 4, got %d", mapping.Layer)
	}
}

func TestDetectColumns_AlternativeNames(t *testing.T) {
	row := []string{"Designator", "Footprint", "Mid X", "Mid Y", "Side", "Rotation", "Comment"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.RefDes != 0 {
		t.Errorf("expected RefDes at 0, got %d", mapping.RefDes)
	}
	if mapping.X != 2 {
		t.Errorf("expected X at 2, got %d", mapping.X)
	}
	if mapping.Y != 3 {
		t.Errorf("expected Y at 3, got %d", mapping.Y)
	}
	if mapping.Rotation != 5 {
		t.Errorf("expected Rotation at 5, got %d", mapping.Rotation)
	}
	if mapping.Value != 6 {
		t.Errorf("expected Value at 6, got %d", mapping.Value)
	}
}

func TestDetectColumns_NoHeaderFallsBackToPositional(t *testing.T) {
	row := []string{"1", "R1", "c0402", "10.5", "20.0", "Top", "90", "10k"}
	mapping, isHeader := DetectColumns(row)

	if isHeader {
		t.Error("data row should not be detected as header")
	}
	if mapping.Num != 0 || mapping.RefDes != 1 || mapping.Package != 2 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
	if mapping.X != 3 || mapping.Y != 4 || mapping.Layer != 5 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "placement.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestImportCSV_Basic(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"Num,RefDes,PartDecal,X,Y,Layer,Orient.,Value",
		"1,R1,c0402,10.5,20.0,Top,0,10k",
		"2,C1,c0603,15.0,25.0,Bottom,90,100nF",
	}, "\n"))

	result := ImportCSV(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(result.Components))
	}

	c := result.Components[0]
	if c.RefDes != "R1" || c.Package != "c0402" {
		t.Errorf("unexpected first component: %+v", c)
	}
	if c.X != 10.5 || c.Y != 20.0 {
		t.Errorf("unexpected coordinates: %v, %v", c.X, c.Y)
	}
	if c.Layer != model.LayerTop {
		t.Errorf("expected top layer, got %v", c.Layer)
	}
	if result.Components[1].Layer != model.LayerBottom {
		t.Errorf("expected bottom layer for C1")
	}
	if result.Components[1].Rotation != 90 {
		t.Errorf("expected rotation 90, got %v", result.Components[1].Rotation)
	}
}

func TestImportCSV_SemicolonDelimiterWarns(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"RefDes;PartDecal;X;Y;Layer",
		"R1;c0402;10.5;20.0;Top",
	}, "\n"))

	result := ImportCSV(path)

	if len(result.Components) != 1 {
		t.Fatalf("expected 1 component, got %d (errors: %v)", len(result.Components), result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected delimiter warning, got %v", result.Warnings)
	}
}

func TestImportCSV_UTF8BOM(t *testing.T) {
	path := writeTempCSV(t, "\xEF\xBB\xBFRefDes,PartDecal,X,Y,Layer\nR1,c0402,1.0,2.0,Top\n")

	result := ImportCSV(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Components) != 1 {
		t.Fatalf("expected 1 component, got %d", len(result.Components))
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")

	result := ImportCSV(path)

	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
	if len(result.Components) != 0 {
		t.Errorf("expected no components, got %d", len(result.Components))
	}
}

func TestImportCSV_MissingFile(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "does-not-exist.csv"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportCSV_MissingRequiredColumns(t *testing.T) {
	path := writeTempCSV(t, "RefDes,PartDecal\nR1,c0402\n")

	result := ImportCSV(path)

	if len(result.Errors) == 0 {
		t.Fatal("expected error for missing columns")
	}
	if !strings.Contains(result.Errors[0], "X") || !strings.Contains(result.Errors[0], "Layer") {
		t.Errorf("error should name the missing columns: %v", result.Errors[0])
	}
}

func TestImportCSV_BadRowsCollected(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"RefDes,PartDecal,X,Y,Layer",
		"R1,c0402,10.0,20.0,Top",
		",c0402,1.0,2.0,Top",
		"R2,c0402,abc,2.0,Top",
		"R3,c0402,3.0,4.0,Middle",
		"R4,c0402,5.0,6.0,Bottom",
	}, "\n"))

	result := ImportCSV(path)

	if len(result.Components) != 2 {
		t.Fatalf("expected 2 good components, got %d", len(result.Components))
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 row errors, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "reference designator") {
		t.Errorf("unexpected error: %v", result.Errors[0])
	}
	if !strings.Contains(result.Errors[1], "invalid X") {
		t.Errorf("unexpected error: %v", result.Errors[1])
	}
	if !strings.Contains(result.Errors[2], "unknown layer") {
		t.Errorf("unexpected error: %v", result.Errors[2])
	}
}

func TestImportCSV_InvalidRotationWarnsAndDefaults(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"RefDes,PartDecal,X,Y,Layer,Orient.",
		"R1,c0402,1.0,2.0,Top,sideways",
	}, "\n"))

	result := ImportCSV(path)

	if len(result.Components) != 1 {
		t.Fatalf("expected 1 component, got %d (errors: %v)", len(result.Components), result.Errors)
	}
	if result.Components[0].Rotation != 0 {
		t.Errorf("expected rotation defaulted to 0, got %v", result.Components[0].Rotation)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "rotation") {
		t.Errorf("expected rotation warning, got %v", result.Warnings)
	}
}

func TestImportCSV_SkipsEmptyRows(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"RefDes,PartDecal,X,Y,Layer",
		"R1,c0402,1.0,2.0,Top",
		",,,,",
		"",
		"R2,c0402,3.0,4.0,Top",
	}, "\n"))

	result := ImportCSV(path)

	if len(result.Components) != 2 {
		t.Fatalf("expected 2 components, got %d (errors: %v)", len(result.Components), result.Errors)
	}
}

func TestImportCSV_NumFallsBackToOrdinal(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"RefDes,PartDecal,X,Y,Layer",
		"R1,c0402,1.0,2.0,Top",
		"R2,c0402,3.0,4.0,Top",
	}, "\n"))

	result := ImportCSV(path)

	if len(result.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(result.Components))
	}
	if result.Components[0].Num != 1 || result.Components[1].Num != 2 {
		t.Errorf("expected ordinal numbering, got %d and %d",
			result.Components[0].Num, result.Components[1].Num)
	}
}

func TestImportCSVFromReader(t *testing.T) {
	data := "RefDes,PartDecal,X,Y,Layer\nU1,sot23,5.0,5.0,Top\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Components) != 1 || result.Components[0].RefDes != "U1" {
		t.Fatalf("unexpected result: %+v", result.Components)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "placement.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_Basic(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Num", "RefDes", "PartDecal", "X", "Y", "Layer", "Orient.", "Value"},
		{1, "R1", "c0402", 10.5, 20.0, "Top", 0, "10k"},
		{2, "U1", "sot23-5", 30.0, 40.0, "Bottom", 270, "LDO"},
	})

	result := ImportExcel(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(result.Components))
	}
	if result.Components[0].RefDes != "R1" || result.Components[0].X != 10.5 {
		t.Errorf("unexpected first component: %+v", result.Components[0])
	}
	if result.Components[1].Package != "sot23-5" || result.Components[1].Rotation != 270 {
		t.Errorf("unexpected second component: %+v", result.Components[1])
	}
}

func TestImportExcel_MissingFile(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "nope.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImport_DispatchesOnExtension(t *testing.T) {
	xlsx := createTestExcel(t, [][]interface{}{
		{"RefDes", "PartDecal", "X", "Y", "Layer"},
		{"R1", "c0402", 1.0, 2.0, "Top"},
	})
	csvPath := writeTempCSV(t, "RefDes,PartDecal,X,Y,Layer\nR2,c0603,3.0,4.0,Bottom\n")

	if res := Import(xlsx); len(res.Components) != 1 || res.Components[0].RefDes != "R1" {
		t.Errorf("Excel dispatch failed: %+v", res)
	}
	if res := Import(csvPath); len(res.Components) != 1 || res.Components[0].RefDes != "R2" {
		t.Errorf("CSV dispatch failed: %+v", res)
	}
}
