package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/vistual/internal/config"
	"github.com/deppfellow/vistual/internal/errs"
	"github.com/deppfellow/vistual/internal/lib/storage"
	"github.com/deppfellow/vistual/internal/middleware"
	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/deppfellow/vistual/internal/service"
	"github.com/deppfellow/vistual/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func newTestServer(fs afero.Fs) *server.Server {
	logger := zerolog.Nop()
	obs := config.DefaultObservabilityConfig()
	obs.HealthChecks.Checks = []string{"storage"}

	return &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Storage:       config.StorageConfig{MaxUploadSize: 1 << 20},
			Observability: obs,
		},
		Logger: &logger,
		Images: storage.NewImageStoreWithFs(fs, 1<<20),
	}
}

func newEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	return e
}

// asUser stands in for RequireAuth.
func asUser(id uuid.UUID) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.UserIDKey, id.String())
			return next(c)
		}
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

type namePayload struct {
	Name string `json:"name" validate:"required"`
}

func (p *namePayload) Validate() error {
	return validation.Struct(p)
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleWritesJSON(t *testing.T) {
	s := newTestServer(afero.NewMemMapFs())
	h := NewHandler(s)
	e := newEcho(s)

	e.POST("/echo", Handle(h, func(c echo.Context, p *namePayload) (map[string]string, error) {
		return map[string]string{"name": p.Name}, nil
	}, http.StatusCreated, &namePayload{}))

	rec := postJSON(e, "/echo", `{"name":"Camisa azul"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"name":"Camisa azul"}`, rec.Body.String())

	rec = postJSON(e, "/echo", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "name", body.Errors[0].Field)
}

func TestHandleBindsFreshPayloadPerRequest(t *testing.T) {
	s := newTestServer(afero.NewMemMapFs())
	h := NewHandler(s)
	e := newEcho(s)

	witness := &namePayload{}
	e.POST("/echo", Handle(h, func(c echo.Context, p *namePayload) (string, error) {
		assert.NotSame(t, witness, p)
		return p.Name, nil
	}, http.StatusOK, witness))

	assert.Equal(t, http.StatusOK, postJSON(e, "/echo", `{"name":"Falda"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(e, "/echo", `{}`).Code)
	assert.Empty(t, witness.Name)
}

func TestHandleNoContent(t *testing.T) {
	s := newTestServer(afero.NewMemMapFs())
	h := NewHandler(s)
	e := newEcho(s)

	called := false
	e.POST("/noop", HandleNoContent(h, func(c echo.Context, p *namePayload) error {
		called = true
		return nil
	}, http.StatusNoContent, &namePayload{}))

	rec := postJSON(e, "/noop", `{"name":"x"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.True(t, called)
}

func TestHandleFileDisposition(t *testing.T) {
	s := newTestServer(afero.NewMemMapFs())
	h := NewHandler(s)
	e := newEcho(s)

	e.GET("/download", HandleFile(h, func(c echo.Context, _ *NoPayload) (*FileResult, error) {
		return &FileResult{Name: "closet.csv", ContentType: "text/csv", Data: []byte("a,b\n")}, nil
	}, http.StatusOK, &NoPayload{}))
	e.GET("/view", HandleFile(h, func(c echo.Context, _ *NoPayload) (*FileResult, error) {
		return &FileResult{Name: "x.png", ContentType: "image/png", Data: pngBytes, Inline: true}, nil
	}, http.StatusOK, &NoPayload{}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="closet.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "a,b\n", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/view", nil))
	assert.Equal(t, `inline; filename="x.png"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, pngBytes, rec.Body.Bytes())
}

func newImageEcho(t *testing.T, owner uuid.UUID) *echo.Echo {
	t.Helper()
	s := newTestServer(afero.NewMemMapFs())
	garments := service.NewGarmentService(nil, s.Images, nil, 0)
	h := NewImageHandler(s, garments)

	e := newEcho(s)
	g := e.Group("/images", asUser(owner))
	g.POST("", Handle(h.Handler, h.UploadImage, http.StatusCreated, &NoPayload{}))
	g.GET("/:key", HandleFile(h.Handler, h.GetImage, http.StatusOK, &garment.GetImagePayload{}))
	return e
}

func uploadRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "photo.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/images", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploadAndServeImage(t *testing.T) {
	owner := uuid.New()
	e := newImageEcho(t, owner)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, ImageFormField, pngBytes))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var upload garment.ImageUpload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upload))
	assert.Equal(t, "image/png", upload.ContentType)
	assert.Equal(t, garment.ImageURLPrefix+upload.Key, upload.URL)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/"+upload.Key, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentDisposition), "inline"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())
}

func TestUploadRequiresImageField(t *testing.T) {
	e := newImageEcho(t, uuid.New())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "photo", pngBytes))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "IMAGE_REQUIRED", decodeError(t, rec).Code)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	e := newImageEcho(t, uuid.New())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, ImageFormField, []byte("just some text, not a picture")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestGetUnknownImage(t *testing.T) {
	e := newImageEcho(t, uuid.New())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/"+uuid.NewString()+".png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "IMAGE_NOT_FOUND", decodeError(t, rec).Code)
}

func TestGetCatalog(t *testing.T) {
	s := newTestServer(afero.NewMemMapFs())
	h := NewCatalogHandler(s, service.NewCatalogService())
	e := newEcho(s)
	e.GET("/catalog", Handle(h.Handler, h.GetCatalog, http.StatusOK, &NoPayload{}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var catalog garment.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	assert.Len(t, catalog.Categories, 8)
	assert.Len(t, catalog.Colors, 10)
	assert.Len(t, catalog.Types, 5)
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name   string
		fs     afero.Fs
		status int
		state  string
	}{
		{name: "writable storage", fs: afero.NewMemMapFs(), status: http.StatusOK, state: "healthy"},
		{name: "read-only storage", fs: afero.NewReadOnlyFs(afero.NewMemMapFs()), status: http.StatusServiceUnavailable, state: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.fs)
			e := newEcho(s)
			e.GET("/status", NewHealthHandler(s).CheckHealth)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
			assert.Equal(t, tt.status, rec.Code)

			var body struct {
				Status string                       `json:"status"`
				Checks map[string]map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.state, body.Status)
			assert.Equal(t, tt.state, body.Checks["storage"]["status"])
			assert.NotContains(t, body.Checks, "database")
		})
	}
}
