package model

// ColumnLocator describes how to find a metric's value column in its sheet.
// When Headers is non-empty the column is located by scanning the top rows
// for a cell containing one of the candidate texts (tried in order); header
// phrasing drifts between OBR editions, so metrics with an unstable layout
// use the search path. Otherwise Index is a fixed 0-based column.
type ColumnLocator struct {
	Index   int
	Headers []string
}

// Fixed reports whether the locator uses a fixed column index.
func (l ColumnLocator) Fixed() bool {
	return len(l.Headers) == 0
}

// Metric describes one forecast series: where it lives in the workbook and
// how it is presented downstream.
type Metric struct {
	Name    string
	Sheet   string
	Locator ColumnLocator
	Title   string
	Usage   string
	Group   string

	// Derived metrics are computed from other extracted series rather than
	// read from the workbook. Social rent follows government policy:
	// CPI + 1pp with a one year lag.
	Derived     bool
	DerivedFrom string
}

// Column indices below are 0-based positions in the raw sheet grid, matching
// the OBR "Economy Detailed forecast tables" layout. The year label sits in
// column 1 on every sheet.
var metrics = []Metric{
	{
		Name:    "cpi",
		Sheet:   "1.7",
		Locator: ColumnLocator{Index: 4},
		Title:   "CPI inflation (%)",
		Group:   "Inflation",
		Usage: `<strong>Used in PolicyEngine to uprate:</strong> ` +
			`<span class="example">Universal Credit, PIP, Child Benefit, State Pension</span> ` +
			`<span class="count">and 44 other benefits and consumption variables</span>. ` +
			`Also used for absolute poverty thresholds, triple lock calculations, and real-terms analysis.`,
	},
	{
		Name:    "rpi",
		Sheet:   "1.7",
		Locator: ColumnLocator{Index: 2},
		Title:   "RPI inflation (%)",
		Group:   "Inflation",
		Usage: `<strong>Used in PolicyEngine for:</strong> ` +
			`<span class="example">Private pension uprating</span> and fuel duty projections. ` +
			`RPI remains important for student loan interest rates and some legacy pension schemes.`,
	},
	{
		Name:    "cpih",
		Sheet:   "1.7",
		Locator: ColumnLocator{Index: 5},
		Title:   "CPIH inflation (%)",
		Group:   "Inflation",
		Usage: `<strong>Used in PolicyEngine for:</strong> ` +
			`<span class="example">After-housing-costs (AHC) deflator</span> calculations. ` +
			`CPIH includes owner occupiers' housing costs, making it useful for real-terms ` +
			`comparisons that account for housing.`,
	},
	{
		Name:    "average_earnings",
		Sheet:   "1.6",
		Locator: ColumnLocator{Headers: []string{"Average weekly earnings growth", "Average earnings growth"}},
		Title:   "Average earnings growth (%)",
		Group:   "Labour market",
		Usage: `<strong>Used in PolicyEngine to uprate:</strong> ` +
			`<span class="example">Employment income, pension contributions, student loan repayments</span> ` +
			`<span class="count">(6 variables)</span>. Also used in triple lock calculations for State Pension.`,
	},
	{
		Name:    "house_prices",
		Sheet:   "1.16",
		Locator: ColumnLocator{Headers: []string{"per cent change"}},
		Title:   "House price growth (%)",
		Group:   "Housing",
		Usage: `<strong>Used in PolicyEngine for:</strong> ` +
			`Stamp duty projections and property value calculations.`,
	},
	{
		Name:    "rent",
		Sheet:   "1.7",
		Locator: ColumnLocator{Index: 8},
		Title:   "Rent growth (%)",
		Group:   "Housing",
		Usage: `<strong>Used in PolicyEngine to uprate:</strong> ` +
			`<span class="example">Private rent</span> for households in the private rented sector.`,
	},
	{
		Name:        "social_rent",
		Sheet:       "",
		Title:       "Social rent growth (%)",
		Group:       "Housing",
		Derived:     true,
		DerivedFrom: "cpi",
		Usage: `<strong>Used in PolicyEngine to uprate:</strong> ` +
			`<span class="example">Social housing rent</span>. Derived from CPI + 1% with a one year lag, ` +
			`following the government's social rent policy.`,
	},
	{
		Name:    "mortgage_interest",
		Sheet:   "1.7",
		Locator: ColumnLocator{Index: 7},
		Title:   "Mortgage interest growth (%)",
		Group:   "Housing",
		Usage: `<strong>Used in PolicyEngine to uprate:</strong> ` +
			`<span class="example">Mortgage interest repayments</span>. Affects housing cost ` +
			`projections for owner-occupiers with mortgages.`,
	},
}

// Metrics returns the registered metrics in presentation order.
func Metrics() []Metric {
	out := make([]Metric, len(metrics))
	copy(out, metrics)
	return out
}

// MetricByName looks up a metric in the registry.
func MetricByName(name string) (Metric, bool) {
	for _, m := range metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// MetricNames returns the registered metric names in presentation order.
func MetricNames() []string {
	names := make([]string, len(metrics))
	for i, m := range metrics {
		names[i] = m.Name
	}
	return names
}

// MetricGroups returns the distinct metric groups in presentation order.
func MetricGroups() []string {
	seen := make(map[string]bool)
	groups := make([]string, 0, 4)
	for _, m := range metrics {
		if !seen[m.Group] {
			seen[m.Group] = true
			groups = append(groups, m.Group)
		}
	}
	return groups
}
