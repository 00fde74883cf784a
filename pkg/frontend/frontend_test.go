package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethpandaops/rbi/pkg/dashboard"
	"github.com/ethpandaops/rbi/pkg/warehouse"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDashboard struct {
	err       error
	refreshed []string
}

func (s *stubDashboard) Navigation() []dashboard.PageInfo {
	return []dashboard.PageInfo{{Slug: "overview", Title: "Overview"}, {Slug: "ops", Title: "Operations"}}
}

func (s *stubDashboard) Render(_ context.Context, slug string) (*dashboard.View, error) {
	if s.err != nil {
		return nil, s.err
	}

	if slug != "overview" {
		return nil, fmt.Errorf("%w: %s", dashboard.ErrPageNotFound, slug)
	}

	return &dashboard.View{
		Slug:  "overview",
		Title: "Overview",
		KPIs:  []dashboard.KPI{{Label: "Total Sales", Value: "1 234 567"}},
		Charts: []dashboard.Chart{
			{ID: "monthly", Kind: dashboard.KindLine, Caption: "Monthly sales", Points: []dashboard.Point{
				{Label: "2024-01-01", Value: 10}, {Label: "2024-02-01", Value: 25},
			}},
			{ID: "region", Kind: dashboard.KindBar, Caption: "Sales by region", Points: []dashboard.Point{
				{Label: "<North>", Value: 2000}, {Label: "South", Value: 1000},
			}},
			{ID: "empty", Kind: dashboard.KindBar, Caption: "Stock alerts", Placeholder: "No data available"},
		},
		Tables: []dashboard.DataTable{{
			Title: "Sales by region",
			Table: warehouse.NewTable([]warehouse.Column{{Name: "region"}}, [][]interface{}{{"North"}}),
		}},
	}, nil
}

func (s *stubDashboard) Refresh(_ context.Context, slug string) error {
	s.refreshed = append(s.refreshed, slug)
	return nil
}

func serve(t *testing.T, dash Dashboard, target string) (*http.Response, string) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	h, err := NewHandler(log, dash)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, http.NoBody))

	resp := rec.Result()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	return resp, string(body)
}

func TestPage(t *testing.T) {
	resp, body := serve(t, &stubDashboard{}, "/pages/overview")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, body, "1 234 567")
	assert.Contains(t, body, "<polyline")
	assert.Contains(t, body, "width: 50%")
	assert.Contains(t, body, "No data available")
	assert.Contains(t, body, `class="active">Overview`)
	assert.Contains(t, body, "&lt;North&gt;")
	assert.NotContains(t, body, "<North>")
}

func TestPageErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		target     string
		wantStatus int
		wantText   string
	}{
		{name: "unknown page", target: "/pages/finance", wantStatus: http.StatusNotFound, wantText: "not found"},
		{name: "warehouse failure", err: errors.New("connection refused"), target: "/pages/overview", wantStatus: http.StatusInternalServerError, wantText: "warehouse query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := serve(t, &stubDashboard{err: tt.err}, tt.target)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Contains(t, body, tt.wantText)
			assert.NotContains(t, body, "connection refused")
		})
	}
}

func TestIndexRedirectsToFirstPage(t *testing.T) {
	resp, _ := serve(t, &stubDashboard{}, "/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/pages/overview", resp.Header.Get("Location"))
}

func TestRefresh(t *testing.T) {
	dash := &stubDashboard{}
	_, _ = serve(t, dash, "/pages/overview?refresh=true")
	assert.Equal(t, []string{"overview"}, dash.refreshed)
}

func TestAssets(t *testing.T) {
	resp, body := serve(t, &stubDashboard{}, "/assets/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, ".kpi"))
}

func TestFuncs(t *testing.T) {
	assert.InDelta(t, 50.0, barWidth(5, 10), 1e-9)
	assert.Zero(t, barWidth(5, 0))
	assert.Equal(t, "1 500", fmtValue(1500))
	assert.Equal(t, "42", fmtValue(42))
	assert.Equal(t, "3.25", fmtValue(3.25))
	assert.Empty(t, string(lineChart(nil)))
	assert.InDelta(t, 2000.0, maxValue([]dashboard.Point{{Value: -2000}, {Value: 5}}), 1e-9)
}
