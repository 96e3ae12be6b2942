package handler

import (
	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/deppfellow/vistual/internal/service"
	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	Handler
	catalog *service.CatalogService
}

func NewCatalogHandler(s *server.Server, catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		Handler: NewHandler(s),
		catalog: catalog,
	}
}

// GetCatalog lists categories, colors and clothing types with their
// display names, so clients can build pickers without hardcoding them.
func (h *CatalogHandler) GetCatalog(c echo.Context, _ *NoPayload) (garment.Catalog, error) {
	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	return h.catalog.Catalog(), nil
}
