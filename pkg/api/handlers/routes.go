package handlers

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v3"
	"github.com/oapi-codegen/runtime"
)

// GetPageParams defines parameters for GetPage
type GetPageParams struct {
	// Refresh drops the page's cached query results before rendering
	Refresh *bool `form:"refresh,omitempty" json:"refresh,omitempty"`
}

// ServerInterface represents all server handlers
type ServerInterface interface {
	// (GET /pages)
	ListPages(c fiber.Ctx) error
	// (GET /pages/{slug})
	GetPage(c fiber.Ctx, slug string, params GetPageParams) error
	// (POST /cache/invalidate)
	InvalidateCache(c fiber.Ctx) error
	// (GET /models)
	GetModels(c fiber.Ctx) error
	// (POST /promotions/predict)
	PredictPromotion(c fiber.Ctx) error
	// (POST /training/runs)
	CreateTrainingRun(c fiber.Ctx) error
	// (GET /training/status)
	GetTrainingStatus(c fiber.Ctx) error
}

// serverInterfaceWrapper converts fiber contexts to parameters
type serverInterfaceWrapper struct {
	handler ServerInterface
}

// RegisterHandlers adds each server route to the router
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	wrapper := serverInterfaceWrapper{handler: si}

	router.Get("/pages", si.ListPages)
	router.Get("/pages/:slug", wrapper.GetPage)
	router.Post("/cache/invalidate", si.InvalidateCache)
	router.Get("/models", si.GetModels)
	router.Post("/promotions/predict", si.PredictPromotion)
	router.Post("/training/runs", si.CreateTrainingRun)
	router.Get("/training/status", si.GetTrainingStatus)
}

func (w *serverInterfaceWrapper) GetPage(c fiber.Ctx) error {
	slug, err := url.PathUnescape(c.Params("slug"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid format for parameter slug: %v", err))
	}

	var params GetPageParams

	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid query string: %v", err))
	}

	if err := runtime.BindQueryParameter("form", true, false, "refresh", query, &params.Refresh); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid format for parameter refresh: %v", err))
	}

	return w.handler.GetPage(c, slug, params)
}
