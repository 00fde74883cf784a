package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ethpandaops/rbi/internal/testutil"
	"github.com/ethpandaops/rbi/pkg/querycache"
	"github.com/ethpandaops/rbi/pkg/rendering"
	"github.com/ethpandaops/rbi/pkg/warehouse"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler testutil.QueryFunc) (*Service, *testutil.StubWarehouse) {
	t.Helper()

	stub := testutil.NewStubWarehouse(handler)
	executor := querycache.NewExecutor(logrus.New(), stub, querycache.NewMemoryStore(), 5*time.Minute)
	engine := rendering.NewTemplateEngine(rendering.Databases{Silver: "SILVER", Analytics: "ANALYTICS"})

	svc, err := NewService(logrus.New(), executor, engine)
	require.NoError(t, err)

	return svc, stub
}

func table(columns []string, rows ...[]interface{}) *warehouse.Table {
	cols := make([]warehouse.Column, len(columns))
	for i, c := range columns {
		cols[i] = warehouse.Column{Name: c}
	}

	return warehouse.NewTable(cols, rows)
}

func overviewHandler(sql string) (*warehouse.Table, error) {
	switch {
	case strings.Contains(sql, "uniqExact(region)"):
		return table([]string{"total_sales", "nb_sales", "nb_regions"},
			[]interface{}{decimal.NewFromFloat(1234567.4), uint64(4821), uint64(4)}), nil
	case strings.Contains(sql, "promo_rate"):
		return table([]string{"promo_rate"}, []interface{}{0.4567}), nil
	case strings.Contains(sql, "toStartOfMonth"):
		return table([]string{"month", "total_sales"},
			[]interface{}{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1000.0},
			[]interface{}{time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 1500.5}), nil
	case strings.Contains(sql, "GROUP BY region"):
		return table([]string{"region", "total_sales"},
			[]interface{}{"North", 900.0},
			[]interface{}{"South", 600.5}), nil
	}

	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func TestNavigation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	slugs := make([]string, 0, 6)
	for _, p := range svc.Navigation() {
		slugs = append(slugs, p.Slug)
	}

	assert.Equal(t, []string{"overview", "sales", "promotions", "roi", "customers", "ops"}, slugs)
}

func TestQueriesRenderAgainstSilver(t *testing.T) {
	svc, _ := newTestService(t, nil)

	for _, page := range svc.Navigation() {
		statements, err := svc.SQL(page.Slug)
		require.NoError(t, err)
		require.NotEmpty(t, statements)

		for id, sql := range statements {
			assert.NotContains(t, sql, "{{", "%s/%s", page.Slug, id)
			assert.Contains(t, sql, "SILVER.", "%s/%s", page.Slug, id)
		}
	}
}

func TestRenderOverview(t *testing.T) {
	svc, _ := newTestService(t, overviewHandler)

	view, err := svc.Render(context.Background(), "overview")
	require.NoError(t, err)

	assert.Equal(t, "Overview", view.Title)
	assert.Equal(t, []KPI{
		{Label: "Total Sales", Value: "1 234 567"},
		{Label: "Number of sales", Value: "4 821"},
		{Label: "Number of regions", Value: "4"},
		{Label: "Share of sales during a promotion", Value: "45.7%"},
	}, view.KPIs)

	require.Len(t, view.Charts, 2)

	monthly := view.Charts[0]
	assert.Equal(t, KindLine, monthly.Kind)
	assert.Empty(t, monthly.Placeholder)
	assert.Equal(t, []Point{{Label: "2024-01-01", Value: 1000}, {Label: "2024-02-01", Value: 1500.5}}, monthly.Points)

	regions := view.Charts[1]
	assert.Equal(t, KindBar, regions.Kind)
	assert.Equal(t, "North", regions.Points[0].Label)

	assert.Len(t, view.Tables, 4)
}

func TestRenderEmptyResultsUsePlaceholders(t *testing.T) {
	svc, _ := newTestService(t, func(string) (*warehouse.Table, error) {
		return warehouse.NewTable(nil, nil), nil
	})

	for _, page := range svc.Navigation() {
		view, err := svc.Render(context.Background(), page.Slug)
		require.NoError(t, err, page.Slug)

		for _, chart := range view.Charts {
			assert.NotEmpty(t, chart.Placeholder, "%s/%s", page.Slug, chart.ID)
			assert.Empty(t, chart.Points)
		}
	}

	view, err := svc.Render(context.Background(), "overview")
	require.NoError(t, err)
	assert.Equal(t, "0", view.KPIs[0].Value)
	assert.Equal(t, "0.0%", view.KPIs[3].Value)
}

func TestRenderMissingColumn(t *testing.T) {
	svc, _ := newTestService(t, func(string) (*warehouse.Table, error) {
		return table([]string{"unexpected"}, []interface{}{1}), nil
	})

	_, err := svc.Render(context.Background(), "sales")
	require.ErrorIs(t, err, warehouse.ErrMissingColumn)
}

func TestRenderWarehouseErrorPropagates(t *testing.T) {
	errDown := errors.New("warehouse unreachable")

	svc, _ := newTestService(t, func(string) (*warehouse.Table, error) {
		return nil, errDown
	})

	_, err := svc.Render(context.Background(), "ops")
	require.ErrorIs(t, err, errDown)
}

func TestRenderUnknownPage(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Render(context.Background(), "finance")
	require.ErrorIs(t, err, ErrPageNotFound)

	require.ErrorIs(t, svc.Refresh(context.Background(), "finance"), ErrPageNotFound)
}

func TestRenderUsesCacheAndRefresh(t *testing.T) {
	svc, stub := newTestService(t, overviewHandler)
	ctx := context.Background()

	_, err := svc.Render(ctx, "overview")
	require.NoError(t, err)
	assert.Equal(t, 4, stub.Calls())

	_, err = svc.Render(ctx, "overview")
	require.NoError(t, err)
	assert.Equal(t, 4, stub.Calls())

	require.NoError(t, svc.Refresh(ctx, "overview"))

	_, err = svc.Render(ctx, "overview")
	require.NoError(t, err)
	assert.Equal(t, 8, stub.Calls())
}

func TestROIChartsKeepTopTwenty(t *testing.T) {
	svc, _ := newTestService(t, func(sql string) (*warehouse.Table, error) {
		rows := make([][]interface{}, 0, 50)
		for i := 0; i < 50; i++ {
			rows = append(rows, []interface{}{fmt.Sprintf("campaign-%02d", i), "North", float64(50 - i)})
		}

		if strings.Contains(sql, "sales_during_campaign") {
			return table([]string{"campaign_name", "region", "sales_during_campaign"}, rows...), nil
		}

		return table([]string{"campaign_name", "region", "roi_proxy"}, rows...), nil
	})

	view, err := svc.Render(context.Background(), "roi")
	require.NoError(t, err)

	require.Len(t, view.Charts, 2)
	assert.Len(t, view.Charts[0].Points, 20)
	assert.Len(t, view.Charts[1].Points, 20)
	assert.Equal(t, 50, view.Tables[0].Table.Len())
}

func TestNullCellsChartAsZero(t *testing.T) {
	svc, _ := newTestService(t, func(sql string) (*warehouse.Table, error) {
		if strings.Contains(sql, "sales_during_campaign") {
			return table([]string{"campaign_name", "region", "sales_during_campaign"},
				[]interface{}{"spring", "North", nil}), nil
		}

		return table([]string{"campaign_name", "region", "roi_proxy"},
			[]interface{}{"spring", "North", nil}), nil
	})

	view, err := svc.Render(context.Background(), "roi")
	require.NoError(t, err)
	assert.Equal(t, []Point{{Label: "spring", Value: 0}}, view.Charts[0].Points)
}

func TestNewServiceRejectsBadPages(t *testing.T) {
	engine := rendering.NewTemplateEngine(rendering.Databases{Silver: "SILVER"})
	executor := querycache.NewExecutor(logrus.New(), testutil.NewStubWarehouse(nil), nil, time.Minute)

	tests := []struct {
		name    string
		pages   []Page
		wantErr error
	}{
		{
			name:    "duplicate slug",
			pages:   []Page{{Slug: "a"}, {Slug: "a"}},
			wantErr: ErrDuplicatePage,
		},
		{
			name: "chart over unknown query",
			pages: []Page{{
				Slug:    "a",
				Queries: []Query{{ID: "q", Template: "SELECT 1"}},
				Charts:  []ChartSpec{{ID: "c", Query: "missing"}},
			}},
			wantErr: ErrUnknownQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService(logrus.New(), executor, engine, tt.pages)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
