// Package handler is the HTTP layer: it binds and validates requests,
// calls the services and writes their results.
package handler

import (
	"github.com/deppfellow/vistual/internal/server"
	"github.com/deppfellow/vistual/internal/service"
)

type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Garment *GarmentHandler
	Image   *ImageHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Auth:    NewAuthHandler(s, services.Auth),
		Catalog: NewCatalogHandler(s, services.Catalog),
		Garment: NewGarmentHandler(s, services.Garment),
		Image:   NewImageHandler(s, services.Garment),
	}
}

// NoPayload is the request type of endpoints that read nothing from the
// request besides the authenticated user.
type NoPayload struct{}

func (p *NoPayload) Validate() error {
	return nil
}
