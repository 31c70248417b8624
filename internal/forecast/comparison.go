package forecast

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/PolicyEngine/forecast-sources/internal/model"
)

// Comparison is a two-edition view of one metric: one row per requested
// year, one value column per edition. Values may be absent.
type Comparison struct {
	Metric   string          `json:"metric"`
	Editions [2]string       `json:"editions"`
	Rows     []ComparisonRow `json:"rows"`
}

// ComparisonRow holds both editions' values for one year, in the order of
// Comparison.Editions. A nil value is absent.
type ComparisonRow struct {
	Year   int         `json:"year"`
	Values [2]*float64 `json:"values"`
}

// Compare builds a comparison of this snapshot against another for one
// metric. The result always has exactly len(years) rows regardless of how
// many values are missing; a nil years slice selects the default window.
func (s *Snapshot) Compare(other *Snapshot, metric string, years []int) *Comparison {
	if years == nil {
		years = model.DefaultYears()
	}

	c := &Comparison{
		Metric:   metric,
		Editions: [2]string{s.edition, other.edition},
		Rows:     make([]ComparisonRow, 0, len(years)),
	}

	for _, year := range years {
		row := ComparisonRow{Year: year}
		for i, snap := range [2]*Snapshot{s, other} {
			if value, ok := snap.Get(metric, year); ok {
				v := value
				row.Values[i] = &v
			}
		}
		c.Rows = append(c.Rows, row)
	}
	return c
}

// Years returns the row years in order.
func (c *Comparison) Years() []int {
	years := make([]int, len(c.Rows))
	for i, row := range c.Rows {
		years[i] = row.Year
	}
	return years
}

// RenderTable writes the comparison as an aligned text table.
func (c *Comparison) RenderTable(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(c.Metric)

	t.AppendHeader(table.Row{"Year", c.Editions[0], c.Editions[1]})
	for _, row := range c.Rows {
		t.AppendRow(table.Row{row.Year, formatValue(row.Values[0]), formatValue(row.Values[1])})
	}
	t.Render()
}

// RenderCSV writes the comparison as CSV with absent values left empty.
func (c *Comparison) RenderCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"year", c.Editions[0], c.Editions[1]}); err != nil {
		return err
	}
	for _, row := range c.Rows {
		record := []string{strconv.Itoa(row.Year), csvValue(row.Values[0]), csvValue(row.Values[1])}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func csvValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
