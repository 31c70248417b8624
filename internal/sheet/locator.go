// Package sheet locates and extracts forecast series from raw worksheet
// grids as returned by excelize (rows of formatted cell strings).
package sheet

import "strings"

// headerSearchRows caps the header scan. OBR tables put their headers within
// the first few rows; scanning deeper would start matching footnotes.
const headerSearchRows = 10

// FindColumn searches the first rows of the grid for a cell whose text
// contains headerText, compared case-insensitively, and returns the 0-based
// column index of the first match in row-major order. The search is
// deliberately tolerant: header row position and exact phrasing vary across
// OBR editions, and a fixed-index lookup would break silently between
// releases.
func FindColumn(rows [][]string, headerText string) (int, bool) {
	needle := strings.ToLower(headerText)

	limit := len(rows)
	if limit > headerSearchRows {
		limit = headerSearchRows
	}

	for rowIdx := 0; rowIdx < limit; rowIdx++ {
		for colIdx, cell := range rows[rowIdx] {
			if strings.Contains(strings.ToLower(cell), needle) {
				return colIdx, true
			}
		}
	}
	return 0, false
}

// FindColumnAny tries each candidate header text in order and returns the
// first column found.
func FindColumnAny(rows [][]string, headers []string) (int, bool) {
	for _, header := range headers {
		if col, ok := FindColumn(rows, header); ok {
			return col, true
		}
	}
	return 0, false
}
