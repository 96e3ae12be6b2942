package router

import (
	"net/http"

	"github.com/deppfellow/vistual/internal/handler"
	"github.com/deppfellow/vistual/internal/middleware"
	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/deppfellow/vistual/internal/model/user"
	"github.com/labstack/echo/v4"
)

func registerV1Routes(v1 *echo.Group, h *handler.Handlers, auth *middleware.AuthMiddleware) {
	v1.GET("/catalog", handler.Handle(h.Catalog.Handler, h.Catalog.GetCatalog, http.StatusOK, &handler.NoPayload{}))

	authRoutes := v1.Group("/auth")
	authRoutes.POST("/register", handler.Handle(h.Auth.Handler, h.Auth.Register, http.StatusCreated, &user.RegisterPayload{}))
	authRoutes.POST("/login", handler.Handle(h.Auth.Handler, h.Auth.Login, http.StatusOK, &user.LoginPayload{}))

	v1.GET("/me", handler.Handle(h.Auth.Handler, h.Auth.Me, http.StatusOK, &handler.NoPayload{}), auth.RequireAuth)

	images := v1.Group("/images", auth.RequireAuth)
	images.POST("", handler.Handle(h.Image.Handler, h.Image.UploadImage, http.StatusCreated, &handler.NoPayload{}))
	images.GET("/:key", handler.HandleFile(h.Image.Handler, h.Image.GetImage, http.StatusOK, &garment.GetImagePayload{}))

	garments := v1.Group("/garments", auth.RequireAuth)
	garments.POST("", handler.Handle(h.Garment.Handler, h.Garment.CreateGarment, http.StatusCreated, &garment.CreateGarmentPayload{}))
	garments.GET("", handler.Handle(h.Garment.Handler, h.Garment.ListGarments, http.StatusOK, &garment.ListGarmentsQuery{}))
	garments.GET("/grouped", handler.Handle(h.Garment.Handler, h.Garment.GroupedGarments, http.StatusOK, &handler.NoPayload{}))
	garments.GET("/stats", handler.Handle(h.Garment.Handler, h.Garment.GarmentStats, http.StatusOK, &handler.NoPayload{}))
	garments.GET("/facets", handler.Handle(h.Garment.Handler, h.Garment.GarmentFacets, http.StatusOK, &handler.NoPayload{}))
	garments.GET("/export", handler.HandleFile(h.Garment.Handler, h.Garment.ExportGarments, http.StatusOK, &handler.NoPayload{}))
	garments.GET("/:id", handler.Handle(h.Garment.Handler, h.Garment.GetGarment, http.StatusOK, &garment.GetGarmentPayload{}))
	garments.DELETE("/:id", handler.HandleNoContent(h.Garment.Handler, h.Garment.DeleteGarment, http.StatusNoContent, &garment.DeleteGarmentPayload{}))
}
