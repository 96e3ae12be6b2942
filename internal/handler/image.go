package handler

import (
	"errors"
	"net/http"

	"github.com/deppfellow/vistual/internal/errs"
	"github.com/deppfellow/vistual/internal/middleware"
	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/deppfellow/vistual/internal/service"
	"github.com/labstack/echo/v4"
)

// ImageFormField is the multipart field that carries an upload.
const ImageFormField = "image"

type ImageHandler struct {
	Handler
	garments *service.GarmentService
}

func NewImageHandler(s *server.Server, garments *service.GarmentService) *ImageHandler {
	return &ImageHandler{
		Handler:  NewHandler(s),
		garments: garments,
	}
}

// UploadImage stores the photo of a garment. The returned key is what
// CreateGarment expects as image_key.
func (h *ImageHandler) UploadImage(c echo.Context, _ *NoPayload) (*garment.ImageUpload, error) {
	userID, err := middleware.GetUserUUID(c)
	if err != nil {
		return nil, err
	}

	fileHeader, err := c.FormFile(ImageFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, errs.NewBadRequestError("an image file is required", true, errs.Ptr("IMAGE_REQUIRED"),
				[]errs.FieldError{{Field: ImageFormField, Error: "is required"}}, nil)
		}
		return nil, errs.NewBadRequestError("invalid multipart form", false, nil, nil, nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return h.garments.UploadImage(c.Request().Context(), userID, file)
}

func (h *ImageHandler) GetImage(c echo.Context, payload *garment.GetImagePayload) (*FileResult, error) {
	userID, err := middleware.GetUserUUID(c)
	if err != nil {
		return nil, err
	}

	img, err := h.garments.OpenImage(c.Request().Context(), userID, payload.Key)
	if err != nil {
		return nil, err
	}

	c.Response().Header().Set("Cache-Control", "private, max-age=86400")

	return &FileResult{
		Name:        img.Key,
		ContentType: img.ContentType,
		Data:        img.Data,
		Inline:      true,
	}, nil
}
