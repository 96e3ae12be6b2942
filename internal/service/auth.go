package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/vistual/internal/errs"
	"github.com/deppfellow/vistual/internal/model/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown so both login
// failures take the same time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("vistual-dummy-password"), bcrypt.DefaultCost)

type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	jobs   TaskEnqueuer
}

func NewAuthService(users UserStore, tokens TokenIssuer, jobs TaskEnqueuer) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		jobs:   jobs,
	}
}

func invalidCredentials() error {
	return errs.NewUnauthorizedError("invalid credentials", true)
}

// Register creates an account and queues the welcome email. The email is
// expected to be normalized by the payload's Validate.
func (a *AuthService) Register(ctx context.Context, payload *user.RegisterPayload) (*user.User, error) {
	logger := zerolog.Ctx(ctx)

	exists, err := a.users.ExistsByEmail(ctx, payload.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.NewConflictError("email already registered", true, errs.Ptr("USER_ALREADY_EXISTS"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, errs.NewBadRequestError("password is too long", true, errs.Ptr("PASSWORD_TOO_LONG"),
			[]errs.FieldError{{Field: "password", Error: fmt.Sprintf("must be at most %d bytes", user.MaxPasswordBytes)}}, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := a.users.Create(ctx, payload.Name, payload.Email, string(hash))
	if err != nil {
		return nil, err
	}

	if a.jobs != nil {
		if err := a.jobs.EnqueueWelcomeEmail(ctx, u.Email, u.Name); err != nil {
			logger.Warn().Err(err).Str("user_id", u.ID.String()).Msg("failed to enqueue welcome email")
		}
	}

	logger.Info().Str("user_id", u.ID.String()).Msg("user registered")
	return u, nil
}

// Login never reveals whether the email or the password was wrong.
func (a *AuthService) Login(ctx context.Context, payload *user.LoginPayload) (*user.AuthResponse, error) {
	u, err := a.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(payload.Password))
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(payload.Password)); err != nil {
		return nil, invalidCredentials()
	}

	signed, expiresAt, err := a.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	return &user.AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      u,
	}, nil
}

func (a *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return a.users.GetByID(ctx, id)
}
