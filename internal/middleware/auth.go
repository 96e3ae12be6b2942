package middleware

import (
	"strings"
	"time"

	"github.com/deppfellow/vistual/internal/errs"
	"github.com/deppfellow/vistual/internal/lib/token"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuthMiddleware struct {
	server *server.Server
	tokens *token.Manager
}

func NewAuthMiddleware(s *server.Server, tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		tokens: tokens,
	}
}

// RequireAuth accepts "Authorization: Bearer <token>", stores the user id
// in the Echo context and adds it to the request logger.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		userID, _, err := auth.tokens.Parse(raw)
		if err != nil {
			GetLogger(c).Warn().
				Err(err).
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("rejected bearer token")

			unauthorized := errs.NewUnauthorizedError("Session expired or invalid, please log in again", true)
			unauthorized.Action = &errs.Action{
				Type:    errs.ActionTypeRedirect,
				Message: "Log in again",
				Value:   "/login",
			}
			return unauthorized
		}

		c.Set(UserIDKey, userID.String())

		logger := GetLogger(c).With().Str("user_id", userID.String()).Logger()
		c.Set(LoggerKey, &logger)
		c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context())))

		logger.Debug().
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("user authenticated successfully")

		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, value, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// GetUserUUID returns the authenticated user's id.
func GetUserUUID(c echo.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(GetUserID(c))
	if err != nil {
		return uuid.Nil, errs.NewUnauthorizedError("Unauthorized", false)
	}
	return userID, nil
}
