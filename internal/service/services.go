// Package service holds the business rules between handlers and repositories.
//
// Services depend on the small interfaces below rather than on concrete
// repositories, so they can be exercised with in-memory fakes.
package service

import (
	"context"
	"io"
	"time"

	"github.com/deppfellow/vistual/internal/lib/job"
	"github.com/deppfellow/vistual/internal/lib/storage"
	"github.com/deppfellow/vistual/internal/lib/token"
	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/deppfellow/vistual/internal/model/user"
	"github.com/deppfellow/vistual/internal/repository"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type GarmentStore interface {
	Create(ctx context.Context, userID uuid.UUID, payload *garment.CreateGarmentPayload) (*garment.Garment, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*garment.Garment, error)
	List(ctx context.Context, userID uuid.UUID, query *garment.ListGarmentsQuery) ([]garment.Garment, int, error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]garment.Garment, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (string, error)
	ImageInUse(ctx context.Context, userID uuid.UUID, key string) (bool, error)
	CountByCategory(ctx context.Context, userID uuid.UUID) ([]garment.CategoryCount, error)
	Facets(ctx context.Context, userID uuid.UUID) (*garment.Facets, error)
}

type ImageStore interface {
	Save(userID uuid.UUID, r io.Reader) (*storage.Image, error)
	Read(userID uuid.UUID, key string) (*storage.Image, error)
	Exists(userID uuid.UUID, key string) (bool, error)
	Remove(userID uuid.UUID, key string) error
}

type StatsCache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type TokenIssuer interface {
	Issue(userID uuid.UUID, email string) (string, time.Time, error)
}

type TaskEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, to, name string) error
}

type Services struct {
	Auth    *AuthService
	Garment *GarmentService
	Catalog *CatalogService
	Tokens  *token.Manager
	Job     *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	tokens := token.NewManager(&s.Config.Auth)

	return &Services{
		Auth:    NewAuthService(repos.User, tokens, s.Job),
		Garment: NewGarmentService(repos.Garment, s.Images, s.Cache, s.Config.Cache.StatsTTL),
		Catalog: NewCatalogService(),
		Tokens:  tokens,
		Job:     s.Job,
	}, nil
}
