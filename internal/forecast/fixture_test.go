package forecast

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Fixture workbooks mimic the OBR "Economy Detailed forecast tables" layout:
// a title row, a header row, quarterly detail rows and annual summary rows
// sharing the same columns, with the year label in column B. Annual values
// follow the published tables so the scenario tests check real numbers.
//
// Sheet 1.7 columns (0-based): 2=RPI, 4=CPI, 5=CPIH, 7=mortgage interest,
// 8=rent. Sheet 1.6 and 1.16 are located by header search.

func setRow(t *testing.T, f *excelize.File, sheetName string, row int, cells []interface{}) {
	t.Helper()
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		t.Fatalf("cell name: %v", err)
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		t.Fatalf("set row %d on %s: %v", row, sheetName, err)
	}
}

func newFixtureSheet(t *testing.T, f *excelize.File, name string) {
	t.Helper()
	if _, err := f.NewSheet(name); err != nil {
		t.Fatalf("new sheet %s: %v", name, err)
	}
}

// writeNovemberFixture writes a workbook carrying the November 2025 EFO
// values and returns its path.
func writeNovemberFixture(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	newFixtureSheet(t, f, "1.7")
	setRow(t, f, "1.7", 1, []interface{}{"Table 1.7: Inflation"})
	setRow(t, f, "1.7", 2, []interface{}{nil, nil, "RPI", "RPIX", "CPI", "CPIH", "GDP deflator", "Mortgage interest payments", "Actual rents for housing"})
	setRow(t, f, "1.7", 3, []interface{}{nil, "2025Q1", 99.9, 99.9, 99.9, 99.9, 99.9, 99.9, 99.9})
	setRow(t, f, "1.7", 4, []interface{}{nil, "2025Q2", 99.9, 99.9, 99.9, 99.9, 99.9, 99.9, 99.9})
	setRow(t, f, "1.7", 5, []interface{}{nil, 2025, 4.33, 4.0, 3.45, 3.30, 2.8, 10.98, 6.70})
	setRow(t, f, "1.7", 6, []interface{}{nil, 2026, 3.71, 3.4, 2.48, 2.50, 2.3, 14.35, 4.10})
	setRow(t, f, "1.7", 7, []interface{}{nil, 2027, 3.20, 3.0, 2.02, 2.10, 2.1, 10.32, 3.20})
	setRow(t, f, "1.7", 8, []interface{}{nil, 2028, 2.90, 2.7, 2.04, 2.10, 2.0, 8.10, 2.80})
	setRow(t, f, "1.7", 9, []interface{}{nil, 2029, 2.50, 2.4, 2.04, 2.00, 2.0, 6.40, 2.50})
	setRow(t, f, "1.7", 10, []interface{}{nil, 2030, 2.31, 2.2, 2.00, 2.00, 2.0, 5.20, 2.30})

	newFixtureSheet(t, f, "1.6")
	setRow(t, f, "1.6", 1, []interface{}{"Table 1.6: Labour market"})
	setRow(t, f, "1.6", 2, []interface{}{nil, nil, "Employment (million)", "Average weekly earnings growth (per cent)"})
	setRow(t, f, "1.6", 3, []interface{}{nil, "2025Q1", 33.9, 99.9})
	setRow(t, f, "1.6", 4, []interface{}{nil, 2025, 34.0, 5.17})
	setRow(t, f, "1.6", 5, []interface{}{nil, 2026, 34.1, 3.33})
	setRow(t, f, "1.6", 6, []interface{}{nil, 2027, 34.2, 2.90})
	setRow(t, f, "1.6", 7, []interface{}{nil, 2028, 34.3, 2.70})
	setRow(t, f, "1.6", 8, []interface{}{nil, 2029, 34.4, 2.60})
	setRow(t, f, "1.6", 9, []interface{}{nil, 2030, 34.5, 2.50})

	newFixtureSheet(t, f, "1.16")
	setRow(t, f, "1.16", 1, []interface{}{"Table 1.16: Housing market"})
	setRow(t, f, "1.16", 2, []interface{}{nil, nil, "House price index (per cent change on a year earlier)"})
	setRow(t, f, "1.16", 3, []interface{}{nil, "2025Q1", 99.9})
	setRow(t, f, "1.16", 4, []interface{}{nil, 2025, 2.80})
	setRow(t, f, "1.16", 5, []interface{}{nil, 2026, 3.10})
	setRow(t, f, "1.16", 6, []interface{}{nil, 2027, 3.50})
	setRow(t, f, "1.16", 7, []interface{}{nil, 2028, 3.40})
	setRow(t, f, "1.16", 8, []interface{}{nil, 2029, 3.20})
	setRow(t, f, "1.16", 9, []interface{}{nil, 2030, 3.00})

	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}

	path := filepath.Join(t.TempDir(), "obr_november-2025_economy.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	return path
}

// writeMarchFixture writes a workbook carrying the March 2025 EFO values.
// Most series end at 2029, and the earnings header uses the older phrasing
// so the locator has to fall through its candidate list.
func writeMarchFixture(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	newFixtureSheet(t, f, "1.7")
	setRow(t, f, "1.7", 1, []interface{}{"Table 1.7: Inflation"})
	setRow(t, f, "1.7", 2, []interface{}{nil, nil, "RPI", "RPIX", "CPI", "CPIH", "GDP deflator", "Mortgage interest payments", "Actual rents for housing"})
	setRow(t, f, "1.7", 3, []interface{}{nil, "2025Q1", 99.9, 99.9, 99.9, 99.9, 99.9, 99.9, 99.9})
	setRow(t, f, "1.7", 4, []interface{}{nil, 2025, 4.20, 3.9, 3.21, 3.10, 2.7, 14.17, 5.50})
	setRow(t, f, "1.7", 5, []interface{}{nil, 2026, 3.00, 2.8, 2.08, 2.20, 2.2, 13.25, 3.90})
	setRow(t, f, "1.7", 6, []interface{}{nil, 2027, 2.80, 2.6, 2.00, 2.10, 2.1, 9.80, 3.10})
	setRow(t, f, "1.7", 7, []interface{}{nil, 2028, 2.60, 2.5, 2.00, 2.00, 2.0, 7.50, 2.70})
	setRow(t, f, "1.7", 8, []interface{}{nil, 2029, 2.40, 2.3, 2.00, 2.00, 2.0, 6.00, 2.40})

	newFixtureSheet(t, f, "1.6")
	setRow(t, f, "1.6", 1, []interface{}{"Table 1.6: Labour market"})
	setRow(t, f, "1.6", 2, []interface{}{nil, nil, "Employment (million)", "Average earnings growth (per cent)"})
	setRow(t, f, "1.6", 3, []interface{}{nil, "2025Q1", 33.8, 99.9})
	setRow(t, f, "1.6", 4, []interface{}{nil, 2025, 33.9, 4.32})
	setRow(t, f, "1.6", 5, []interface{}{nil, 2026, 34.0, 3.00})
	setRow(t, f, "1.6", 6, []interface{}{nil, 2027, 34.1, 2.80})
	setRow(t, f, "1.6", 7, []interface{}{nil, 2028, 34.2, 2.60})
	setRow(t, f, "1.6", 8, []interface{}{nil, 2029, 34.3, 2.50})

	newFixtureSheet(t, f, "1.16")
	setRow(t, f, "1.16", 1, []interface{}{"Table 1.16: Housing market"})
	setRow(t, f, "1.16", 2, []interface{}{nil, nil, "House price index (per cent change on a year earlier)"})
	setRow(t, f, "1.16", 3, []interface{}{nil, "2025Q1", 99.9})
	setRow(t, f, "1.16", 4, []interface{}{nil, 2025, 2.50})
	setRow(t, f, "1.16", 5, []interface{}{nil, 2026, 2.90})
	setRow(t, f, "1.16", 6, []interface{}{nil, 2027, 3.20})
	setRow(t, f, "1.16", 7, []interface{}{nil, 2028, 3.10})
	setRow(t, f, "1.16", 8, []interface{}{nil, 2029, 3.00})

	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}

	path := filepath.Join(t.TempDir(), "obr_march-2025_economy.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	return path
}

// stripSheet copies a fixture workbook without one of its sheets.
func stripSheet(t *testing.T, path, sheetName string) string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	if err := f.DeleteSheet(sheetName); err != nil {
		t.Fatalf("delete sheet %s: %v", sheetName, err)
	}

	stripped := filepath.Join(t.TempDir(), "stripped.xlsx")
	if err := f.SaveAs(stripped); err != nil {
		t.Fatalf("save stripped fixture: %v", err)
	}
	return stripped
}
