// Package dashboard defines the six dashboard pages and renders them into views
package dashboard

import (
	"context"

	"github.com/ethpandaops/rbi/pkg/convert"
	"github.com/ethpandaops/rbi/pkg/warehouse"
)

// Chart kinds
const (
	KindLine = "line"
	KindBar  = "bar"
)

// Query is a SQL template and the columns its result must carry
type Query struct {
	ID       string
	Template string
	Columns  []string
}

// ChartSpec describes a chart over one query result
type ChartSpec struct {
	ID          string
	Kind        string
	Caption     string
	Query       string
	Index       string
	Series      string
	Limit       int
	Placeholder string
}

// Results holds the tables of one page render keyed by query ID
type Results map[string]*warehouse.Table

// Page is a dashboard page definition
type Page struct {
	Slug    string
	Title   string
	Caption string
	Queries []Query
	Charts  []ChartSpec
	// KPIs builds the headline cards, nil when the page has none
	KPIs func(Results) []KPI
}

// KPI is a headline metric card
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Point is one chart value
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart is a rendered chart; Placeholder is set instead of Points when the result is empty
type Chart struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Caption     string  `json:"caption"`
	Index       string  `json:"index"`
	Series      string  `json:"series"`
	Points      []Point `json:"points"`
	Placeholder string  `json:"placeholder,omitempty"`
}

// DataTable is a raw result shown under a page
type DataTable struct {
	Title string           `json:"title"`
	Table *warehouse.Table `json:"table"`
}

// View is a rendered page
type View struct {
	Slug    string      `json:"slug"`
	Title   string      `json:"title"`
	Caption string      `json:"caption"`
	KPIs    []KPI       `json:"kpis"`
	Charts  []Chart     `json:"charts"`
	Tables  []DataTable `json:"tables"`
}

// Runner executes SQL, usually through the query cache
type Runner interface {
	Run(ctx context.Context, sql string) (*warehouse.Table, error)
	Invalidate(ctx context.Context, sql string) error
}

func buildChart(spec ChartSpec, table *warehouse.Table) Chart {
	chart := Chart{
		ID:      spec.ID,
		Kind:    spec.Kind,
		Caption: spec.Caption,
		Index:   spec.Index,
		Series:  spec.Series,
		Points:  []Point{},
	}

	if table.Empty() {
		chart.Placeholder = spec.Placeholder
		return chart
	}

	rows := table
	if spec.Limit > 0 {
		rows = table.Head(spec.Limit)
	}

	for i := 0; i < rows.Len(); i++ {
		chart.Points = append(chart.Points, Point{
			Label: convert.Label(rows.Value(i, spec.Index)),
			Value: convert.SafeFloat(rows.Value(i, spec.Series), 0),
		})
	}

	return chart
}

// first returns the cell of the first row, or nil for an empty result
func first(table *warehouse.Table, column string) interface{} {
	if table.Empty() {
		return nil
	}

	return table.Value(0, column)
}
