// Package chart renders the two-edition comparison page: a plotly line chart
// with a metric dropdown and a usage panel, as a single self-contained HTML
// document.
package chart

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"

	"github.com/PolicyEngine/forecast-sources/internal/forecast"
	"github.com/PolicyEngine/forecast-sources/internal/model"
)

//go:embed chart.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "chart.html.tmpl"))

type metricData struct {
	Name       string
	Title      string
	UsageJSON  template.JS
	BaseJSON   template.JS
	CompJSON   template.JS
}

type groupData struct {
	Label   string
	Options []optionData
}

type optionData struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	BaseEdition       string
	ComparisonEdition string
	YearsJSON         template.JS
	YMax              template.JS
	Metrics           []metricData
	Groups            []groupData
}

// Generate renders the comparison page for two snapshots. The base edition
// draws as a dashed line, the comparison edition as a solid one. A nil years
// slice selects the default window.
func Generate(base, comparison *forecast.Snapshot, years []int) (string, error) {
	if years == nil {
		years = model.DefaultYears()
	}

	data := pageData{
		BaseEdition:       base.Edition(),
		ComparisonEdition: comparison.Edition(),
		YearsJSON:         mustJSON(years),
		Metrics:           make([]metricData, 0, len(model.Metrics())),
	}

	maxValue := 0.0
	for _, metric := range model.Metrics() {
		baseValues := seriesValues(base, metric.Name, years)
		compValues := seriesValues(comparison, metric.Name, years)
		for _, v := range append(baseValues, compValues...) {
			if v != nil && *v > maxValue {
				maxValue = *v
			}
		}

		data.Metrics = append(data.Metrics, metricData{
			Name:      metric.Name,
			Title:     metric.Title,
			UsageJSON: mustJSON(metric.Usage),
			BaseJSON:  mustJSON(baseValues),
			CompJSON:  mustJSON(compValues),
		})
	}

	if maxValue == 0 {
		maxValue = 10
	}
	// Round the axis ceiling up to the next multiple of 5, plus headroom.
	data.YMax = mustJSON((int(maxValue)/5+1)*5 + 1)

	data.Groups = buildGroups()

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	return buf.String(), nil
}

// WriteFile renders the comparison page to path, creating parent directories
// as needed.
func WriteFile(path string, base, comparison *forecast.Snapshot, years []int) error {
	html, err := Generate(base, comparison, years)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(path, []byte(html), 0644)
}

// seriesValues collects one edition's values over the years, rounded to two
// decimals for display, nil marking absence.
func seriesValues(snap *forecast.Snapshot, metric string, years []int) []*float64 {
	values := make([]*float64, len(years))
	for i, year := range years {
		if v, ok := snap.Get(metric, year); ok {
			rounded := math.Round(v*100) / 100
			values[i] = &rounded
		}
	}
	return values
}

func buildGroups() []groupData {
	groups := make([]groupData, 0, len(model.MetricGroups()))
	for _, group := range model.MetricGroups() {
		g := groupData{Label: group}
		for _, metric := range model.Metrics() {
			if metric.Group != group {
				continue
			}
			g.Options = append(g.Options, optionData{
				Value:    metric.Name,
				Label:    metric.Title,
				Selected: metric.Name == "cpi",
			})
		}
		groups = append(groups, g)
	}
	return groups
}

func mustJSON(v any) template.JS {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return template.JS(data)
}
