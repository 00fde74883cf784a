package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethpandaops/rbi/pkg/observability"
	"github.com/ethpandaops/rbi/pkg/rendering"
	"github.com/ethpandaops/rbi/pkg/warehouse"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Define static errors
var (
	ErrPageNotFound  = errors.New("page not found")
	ErrUnknownQuery  = errors.New("chart references unknown query")
	ErrDuplicatePage = errors.New("duplicate page slug")
)

// PageInfo is a navigation entry
type PageInfo struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Pages returns the page definitions in navigation order
func Pages() []Page {
	return []Page{
		overviewPage(),
		salesPage(),
		promotionsPage(),
		roiPage(),
		customersPage(),
		opsPage(),
	}
}

type compiledPage struct {
	Page
	sql map[string]string
}

// Service renders dashboard pages through a Runner
type Service struct {
	log    logrus.FieldLogger
	runner Runner
	pages  []*compiledPage
	bySlug map[string]*compiledPage
}

// NewService renders every query template up front so a bad template fails at startup
func NewService(log logrus.FieldLogger, runner Runner, engine *rendering.TemplateEngine) (*Service, error) {
	return newService(log, runner, engine, Pages())
}

func newService(log logrus.FieldLogger, runner Runner, engine *rendering.TemplateEngine, pages []Page) (*Service, error) {
	s := &Service{
		log:    log.WithField("component", "dashboard"),
		runner: runner,
		bySlug: make(map[string]*compiledPage, len(pages)),
	}

	for _, page := range pages {
		if _, exists := s.bySlug[page.Slug]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePage, page.Slug)
		}

		compiled := &compiledPage{Page: page, sql: make(map[string]string, len(page.Queries))}

		for _, q := range page.Queries {
			sql, err := engine.Render(page.Slug+"/"+q.ID, q.Template, nil)
			if err != nil {
				return nil, err
			}

			compiled.sql[q.ID] = strings.TrimSpace(sql)
		}

		for _, chart := range page.Charts {
			if _, ok := compiled.sql[chart.Query]; !ok {
				return nil, fmt.Errorf("%w: %s/%s", ErrUnknownQuery, page.Slug, chart.Query)
			}
		}

		s.pages = append(s.pages, compiled)
		s.bySlug[page.Slug] = compiled
	}

	return s, nil
}

// Navigation returns the ordered page list
func (s *Service) Navigation() []PageInfo {
	nav := make([]PageInfo, 0, len(s.pages))
	for _, p := range s.pages {
		nav = append(nav, PageInfo{Slug: p.Slug, Title: p.Title})
	}

	return nav
}

// SQL returns the rendered statements of a page keyed by query ID
func (s *Service) SQL(slug string) (map[string]string, error) {
	page, ok := s.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
	}

	out := make(map[string]string, len(page.sql))
	for k, v := range page.sql {
		out[k] = v
	}

	return out, nil
}

// Render runs the page's queries and builds its view
func (s *Service) Render(ctx context.Context, slug string) (*View, error) {
	page, ok := s.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
	}

	view, err := s.render(ctx, page)
	observability.RecordPageRender(slug, err)

	if err != nil {
		s.log.WithError(err).WithField("page", slug).Error("Failed to render page")
		return nil, err
	}

	return view, nil
}

// Refresh drops the cached results of a page so the next render hits the warehouse
func (s *Service) Refresh(ctx context.Context, slug string) error {
	page, ok := s.bySlug[slug]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, slug)
	}

	for _, q := range page.Queries {
		if err := s.runner.Invalidate(ctx, page.sql[q.ID]); err != nil {
			return fmt.Errorf("failed to invalidate %s/%s: %w", slug, q.ID, err)
		}
	}

	return nil
}

func (s *Service) render(ctx context.Context, page *compiledPage) (*View, error) {
	results, err := s.runQueries(ctx, page)
	if err != nil {
		return nil, err
	}

	view := &View{
		Slug:    page.Slug,
		Title:   page.Title,
		Caption: page.Caption,
		KPIs:    []KPI{},
		Charts:  make([]Chart, 0, len(page.Charts)),
		Tables:  make([]DataTable, 0, len(page.Queries)),
	}

	if page.KPIs != nil {
		view.KPIs = page.KPIs(results)
	}

	for _, spec := range page.Charts {
		view.Charts = append(view.Charts, buildChart(spec, results[spec.Query]))
	}

	for _, q := range page.Queries {
		view.Tables = append(view.Tables, DataTable{Title: q.ID, Table: results[q.ID]})
	}

	return view, nil
}

func (s *Service) runQueries(ctx context.Context, page *compiledPage) (Results, error) {
	var mu sync.Mutex

	results := make(Results, len(page.Queries))

	g, gctx := errgroup.WithContext(ctx)

	for _, q := range page.Queries {
		g.Go(func() error {
			table, err := s.runner.Run(gctx, page.sql[q.ID])
			if err != nil {
				return fmt.Errorf("query %s/%s failed: %w", page.Slug, q.ID, err)
			}

			// empty results become placeholders whatever their header
			if err := requireColumns(table, q.Columns); err != nil {
				return fmt.Errorf("query %s/%s: %w", page.Slug, q.ID, err)
			}

			mu.Lock()
			results[q.ID] = table
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func requireColumns(table *warehouse.Table, columns []string) error {
	if table.Empty() {
		return nil
	}

	return table.Require(columns...)
}
