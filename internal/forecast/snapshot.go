// Package forecast loads OBR forecast editions into read-only snapshots and
// answers point, series and two-edition comparison queries.
package forecast

import (
	"fmt"
	"log"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/PolicyEngine/forecast-sources/internal/fetch"
	"github.com/PolicyEngine/forecast-sources/internal/model"
	"github.com/PolicyEngine/forecast-sources/internal/sheet"
)

// Snapshot owns all extracted series for one forecast edition. It is built
// eagerly at load time and read-only afterwards.
type Snapshot struct {
	edition string
	series  map[string]model.Series
}

// NewSnapshot builds a snapshot from already-extracted series. Used by the
// store when reading persisted values back, and by tests.
func NewSnapshot(edition string, series map[string]model.Series) *Snapshot {
	data := make(map[string]model.Series, len(series))
	for metric, s := range series {
		data[metric] = s.Clone()
	}
	return &Snapshot{edition: edition, series: data}
}

// Load resolves the edition's workbook through the cache and extracts every
// registered metric. cacheDir may be empty for the platform default.
func Load(edition, cacheDir string) (*Snapshot, error) {
	return LoadWith(fetch.New(cacheDir), edition)
}

// LoadWith is Load with a caller-supplied fetcher.
func LoadWith(fetcher *fetch.Fetcher, edition string) (*Snapshot, error) {
	path, err := fetcher.Resolve(edition)
	if err != nil {
		return nil, err
	}
	return LoadFile(edition, path)
}

// LoadFile extracts every registered metric from a local workbook. A metric
// whose sheet is missing or whose column cannot be located is logged and left
// absent; a layout change in one metric must not prevent loading the others.
func LoadFile(edition, path string) (*Snapshot, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer file.Close()

	snap := &Snapshot{
		edition: edition,
		series:  make(map[string]model.Series),
	}

	// Sheets are shared between metrics; read each at most once.
	grids := make(map[string][][]string)

	for _, metric := range model.Metrics() {
		if metric.Derived {
			continue
		}

		rows, ok := grids[metric.Sheet]
		if !ok {
			rows, err = file.GetRows(metric.Sheet)
			if err != nil {
				log.Printf("warning: edition %s: cannot load sheet %s: %v", edition, metric.Sheet, err)
				grids[metric.Sheet] = nil
				continue
			}
			grids[metric.Sheet] = rows
		}
		if rows == nil {
			continue
		}

		col, ok := resolveColumn(rows, metric)
		if !ok {
			log.Printf("warning: edition %s: column not found for metric %s (sheet %s)", edition, metric.Name, metric.Sheet)
			continue
		}

		series := sheet.ExtractAnnualDefault(rows, col)
		if len(series) == 0 {
			continue
		}
		snap.series[metric.Name] = series
	}

	snap.deriveMetrics()
	return snap, nil
}

// resolveColumn selects between the two locator strategies: fixed index for
// metrics with a historically stable layout, header search otherwise.
func resolveColumn(rows [][]string, metric model.Metric) (int, bool) {
	if metric.Locator.Fixed() {
		return metric.Locator.Index, true
	}
	return sheet.FindColumnAny(rows, metric.Locator.Headers)
}

// deriveMetrics computes registry metrics defined in terms of other series.
// Social rent is CPI + 1pp lagged one year.
func (s *Snapshot) deriveMetrics() {
	for _, metric := range model.Metrics() {
		if !metric.Derived {
			continue
		}
		source, ok := s.series[metric.DerivedFrom]
		if !ok {
			continue
		}
		derived := make(model.Series, len(source))
		for year, value := range source {
			derived[year+1] = value + 1.0
		}
		s.series[metric.Name] = derived
	}
}

// Edition returns the snapshot's edition name.
func (s *Snapshot) Edition() string {
	return s.edition
}

// Get returns the value for (metric, year), reporting absence through the
// second return. A missing metric or year never yields a default value.
func (s *Snapshot) Get(metric string, year int) (float64, bool) {
	series, ok := s.series[metric]
	if !ok {
		return 0, false
	}
	value, ok := series[year]
	return value, ok
}

// Has reports whether any series was loaded for the metric.
func (s *Snapshot) Has(metric string) bool {
	_, ok := s.series[metric]
	return ok
}

// Series returns a value for every requested year, nil marking absence. A
// nil years slice selects the default window.
func (s *Snapshot) Series(metric string, years []int) map[int]*float64 {
	if years == nil {
		years = model.DefaultYears()
	}
	out := make(map[int]*float64, len(years))
	for _, year := range years {
		if value, ok := s.Get(metric, year); ok {
			v := value
			out[year] = &v
		} else {
			out[year] = nil
		}
	}
	return out
}

// AvailableMetrics lists the metrics that loaded, sorted.
func (s *Snapshot) AvailableMetrics() []string {
	names := make([]string, 0, len(s.series))
	for name := range s.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns the raw extracted series, cloned. Used by the store.
func (s *Snapshot) Values() map[string]model.Series {
	out := make(map[string]model.Series, len(s.series))
	for metric, series := range s.series {
		out[metric] = series.Clone()
	}
	return out
}
