package sheet

import (
	"strconv"
	"strings"

	"github.com/PolicyEngine/forecast-sources/internal/model"
)

// Defaults for annual-row recognition in the OBR detailed forecast tables.
// The year label sits in column 1 on every sheet, and published editions
// never reach outside the 2008-2035 window.
const (
	DefaultYearColumn = 1
	MinAnnualYear     = 2008
	MaxAnnualYear     = 2035
)

// ExtractAnnual collects year -> value pairs from valueCol for every annual
// row of the grid. The tables interleave quarterly detail rows with annual
// summary rows in the same column range; a row counts as annual iff the cell
// at yearCol is numeric and its integer truncation falls within
// [yearMin, yearMax], so quarterly labels ("2025Q1") are excluded by
// construction rather than by explicit quarter detection. Rows whose value
// cell is empty or non-numeric are skipped. A duplicate year overwrites the
// earlier row.
func ExtractAnnual(rows [][]string, valueCol, yearCol, yearMin, yearMax int) model.Series {
	series := make(model.Series)

	for _, row := range rows {
		if yearCol >= len(row) || valueCol >= len(row) {
			continue
		}

		yearValue, ok := parseNumeric(row[yearCol])
		if !ok {
			continue
		}
		year := int(yearValue)
		if year < yearMin || year > yearMax {
			continue
		}

		value, ok := parseNumeric(row[valueCol])
		if !ok {
			continue
		}
		series[year] = value
	}

	return series
}

// ExtractAnnualDefault extracts with the standard OBR year column and window.
func ExtractAnnualDefault(rows [][]string, valueCol int) model.Series {
	return ExtractAnnual(rows, valueCol, DefaultYearColumn, MinAnnualYear, MaxAnnualYear)
}

// parseNumeric converts a formatted cell to a float. An empty or non-numeric
// cell reports ok=false; callers must treat that as absent, never as zero.
func parseNumeric(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	cell = strings.ReplaceAll(cell, ",", "")
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
