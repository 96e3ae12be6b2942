package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deppfellow/vistual/internal/config"
	"github.com/deppfellow/vistual/internal/errs"
	"github.com/deppfellow/vistual/internal/lib/token"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Server: config.ServerConfig{
				CORSAllowedOrigins: []string{"*"},
				RateLimit:          1,
			},
			Auth: config.AuthConfig{
				SecretKey: "test-secret-key-0123456789",
				TokenTTL:  time.Hour,
			},
			Storage: config.StorageConfig{MaxUploadSize: 1 << 20},
		},
		Logger: &logger,
	}
}

func newEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, rec.Header().Get(RequestIDHeader), rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Body.String())
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer()
	tokens := token.NewManager(&s.Config.Auth)
	auth := NewAuthMiddleware(s, tokens)

	e := newEcho(s)
	e.GET("/me", func(c echo.Context) error {
		userID, err := GetUserUUID(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, userID.String())
	}, auth.RequireAuth)

	userID := uuid.New()
	signed, _, err := tokens.Issue(userID, "ana@example.com")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID.String(), rec.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
	})

	t.Run("bad token asks for login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer nope")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeError(t, rec)
		require.NotNil(t, body.Action)
		assert.Equal(t, "/login", body.Action.Value)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Basic "+signed)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGlobalErrorHandler(t *testing.T) {
	s := newTestServer()
	e := newEcho(s)

	e.GET("/conflict", func(c echo.Context) error {
		return &pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "unique_users_email"}
	})
	e.GET("/validation", func(c echo.Context) error {
		return errs.NewBadRequestError("Validation failed", true, nil, []errs.FieldError{{Field: "name", Error: "is required"}}, nil)
	})

	t.Run("driver error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conflict", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "USER_ALREADY_EXISTS", decodeError(t, rec).Code)
	})

	t.Run("field errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/validation", nil))

		body := decodeError(t, rec)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.True(t, body.Override)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "name", body.Errors[0].Field)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Route not found", decodeError(t, rec).Message)
	})
}

func TestRateLimiter(t *testing.T) {
	s := newTestServer()
	e := newEcho(s)
	e.Use(NewRateLimitMiddleware(s).RateLimiter())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	codes := make([]int, 0, 5)
	for range 5 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}

func TestContextEnhancerSetsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	s := newTestServer()
	s.Logger = &logger

	e := echo.New()
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())
	e.GET("/", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from service")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	e.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), "from service")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "1024K", formatBytes(1<<20))
	assert.Equal(t, "1K", formatBytes(1))
}

func TestToHTTPError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, toHTTPError(assert.AnError).Status)
	assert.Equal(t, http.StatusRequestEntityTooLarge, toHTTPError(echo.ErrStatusRequestEntityTooLarge).Status)

	methodErr := toHTTPError(echo.ErrMethodNotAllowed)
	assert.Equal(t, http.StatusMethodNotAllowed, methodErr.Status)
	assert.Equal(t, "METHOD_NOT_ALLOWED", methodErr.Code)

	original := errs.NewConflictError("taken", true, nil)
	assert.Same(t, original, toHTTPError(original))
}
