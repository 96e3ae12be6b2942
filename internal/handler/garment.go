package handler

import (
	"fmt"
	"time"

	"github.com/deppfellow/vistual/internal/middleware"
	"github.com/deppfellow/vistual/internal/model"
	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/deppfellow/vistual/internal/service"
	"github.com/labstack/echo/v4"
)

type GarmentHandler struct {
	Handler
	garments *service.GarmentService
}

func NewGarmentHandler(s *server.Server, garments *service.GarmentService) *GarmentHandler {
	return &GarmentHandler{
		Handler:  NewHandler(s),
		garments: garments,
	}
}

func (h *GarmentHandler) CreateGarment(c echo.Context, payload *garment.CreateGarmentPayload) (*garment.Garment, error) {
	userID, err := middleware.GetUserUUID(c)
	if err != nil {
		return nil, err
	}
	return h.garments.Create(c.Request().Context(), userID, payload)
}

// ListGarments serves the grid view.
func (h *GarmentHandler) ListGarments(c echo.Context, query *garment.ListGarmentsQuery) (*model.PaginatedResponse[garment.Garment], error) {
	userID, err := middleware.GetUserUUID(c)
	if err != nil {
		return nil, err
	}
	return h.garments.List(c.Request().Context(), userID, query)
}

// GroupedGarments serves the per-category carousel.
func (h *GarmentHandler) GroupedGarments(c echo.Context, _ *NoPayload) ([]garment.Group, error) {
	userID, err := middleware.GetUserUUID(c)
	if err != nil {
		return nil, err
	}
	return h.garments.Grouped(c.Request().Context(), userID)
}

func (h *GarmentHandler) GarmentStats(c echo.Context, _ *NoPayload) (*garment.Stats, error) {
	userID, err := middleware.GetUserUUID(c)
	if err != nil {
		return nil, err
	}
	return h.garments.Stats(c.Request().Context(), userID)
}

func (h *GarmentHandler) GarmentFacets(c echo.Context, _ *NoPayload) (*garment.Facets, error) {
	userID, err := middleware.GetUserUUID(c)
	if err != nil {
		return nil, err
	}
	return h.garments.Facets(c.Request().Context(), userID)
}

func (h *GarmentHandler) ExportGarments(c echo.Context, _ *NoPayload) (*FileResult, error) {
	userID, err := middleware.GetUserUUID(c)
	if err != nil {
		return nil, err
	}

	data, err := h.garments.Export(c.Request().Context(), userID)
	if err != nil {
		return nil, err
	}

	return &FileResult{
		Name:        fmt.Sprintf("vistual-%s.csv", time.Now().UTC().Format("20060102")),
		ContentType: "text/csv; charset=utf-8",
		Data:        data,
	}, nil
}

func (h *GarmentHandler) GetGarment(c echo.Context, payload *garment.GetGarmentPayload) (*garment.Garment, error) {
	userID, err := middleware.GetUserUUID(c)
	if err != nil {
		return nil, err
	}
	return h.garments.Get(c.Request().Context(), userID, payload.ID)
}

func (h *GarmentHandler) DeleteGarment(c echo.Context, payload *garment.DeleteGarmentPayload) error {
	userID, err := middleware.GetUserUUID(c)
	if err != nil {
		return err
	}
	return h.garments.Delete(c.Request().Context(), userID, payload.ID)
}
