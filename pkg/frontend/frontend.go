// Package frontend renders the dashboard pages as server-side HTML
package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	static "github.com/ethpandaops/rbi/frontend"
	"github.com/ethpandaops/rbi/pkg/dashboard"
	"github.com/sirupsen/logrus"
)

// Dashboard renders dashboard pages
type Dashboard interface {
	Navigation() []dashboard.PageInfo
	Render(ctx context.Context, slug string) (*dashboard.View, error)
	Refresh(ctx context.Context, slug string) error
}

type pageData struct {
	Navigation []dashboard.PageInfo
	View       *dashboard.View
}

type errorData struct {
	Status  int
	Message string
}

type handler struct {
	log       logrus.FieldLogger
	dashboard Dashboard
	templates *template.Template
	mux       *http.ServeMux
}

// NewHandler creates the HTML handler: "/" shows the first page,
// "/pages/{slug}" any page and "/assets/" the stylesheet.
func NewHandler(log logrus.FieldLogger, dash Dashboard) (http.Handler, error) {
	templates, err := template.New("frontend").Funcs(funcMap()).ParseFS(static.FS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	assets, err := fs.Sub(static.FS, "assets")
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}

	h := &handler{
		log:       log.WithField("component", "frontend"),
		dashboard: dash,
		templates: templates,
		mux:       http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /{$}", h.index)
	h.mux.HandleFunc("GET /pages/{slug}", h.page)
	h.mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(assets))))

	return h, nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.mux.ServeHTTP(w, req)
}

func (h *handler) index(w http.ResponseWriter, req *http.Request) {
	nav := h.dashboard.Navigation()
	if len(nav) == 0 {
		h.renderError(w, http.StatusNotFound, "no pages configured")
		return
	}

	http.Redirect(w, req, "/pages/"+nav[0].Slug, http.StatusFound)
}

func (h *handler) page(w http.ResponseWriter, req *http.Request) {
	slug := req.PathValue("slug")
	ctx := req.Context()

	if req.URL.Query().Get("refresh") == "true" {
		if err := h.dashboard.Refresh(ctx, slug); err != nil && !errors.Is(err, dashboard.ErrPageNotFound) {
			h.log.WithError(err).WithField("page", slug).Warn("Failed to refresh page")
		}
	}

	view, err := h.dashboard.Render(ctx, slug)
	if err != nil {
		if errors.Is(err, dashboard.ErrPageNotFound) {
			h.renderError(w, http.StatusNotFound, fmt.Sprintf("page %q not found", slug))
			return
		}

		h.log.WithError(err).WithField("page", slug).Error("Failed to render page")
		h.renderError(w, http.StatusInternalServerError, "the warehouse query for this page failed")

		return
	}

	h.write(w, http.StatusOK, "layout", pageData{Navigation: h.dashboard.Navigation(), View: view})
}

func (h *handler) renderError(w http.ResponseWriter, status int, message string) {
	h.write(w, status, "error", errorData{Status: status, Message: message})
}

// write renders into a buffer first so a template error never produces a
// half-written page
func (h *handler) write(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.WithError(err).WithField("template", name).Error("Failed to execute template")
		http.Error(w, "template error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.WithError(err).Debug("Failed to write response")
	}
}
