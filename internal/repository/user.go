package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/vistual/internal/model/user"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/deppfellow/vistual/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	server *server.Server
}

func NewUserRepository(s *server.Server) *UserRepository {
	return &UserRepository{server: s}
}

func (r *UserRepository) Create(ctx context.Context, name, email, passwordHash string) (*user.User, error) {
	stmt := `
		INSERT INTO
			users (name, email, password_hash)
		VALUES
			(@name, @email, @password_hash)
		RETURNING
			*
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"name":          name,
		"email":         email,
		"password_hash": passwordHash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute create user query for email=%s: %w", email, err)
	}

	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[user.User])
	if err != nil {
		return nil, fmt.Errorf("failed to collect row from table:users for email=%s: %w", email, err)
	}

	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	stmt := `
		SELECT
			*
		FROM
			users
		WHERE
			id = @id
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get user by id query for id=%s: %w", id, err)
	}

	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[user.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound("users")
		}
		return nil, fmt.Errorf("failed to collect row from table:users for id=%s: %w", id, err)
	}

	return &u, nil
}

// GetByEmail expects an address already passed through user.NormalizeEmail.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	stmt := `
		SELECT
			*
		FROM
			users
		WHERE
			email = @email
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get user by email query: %w", err)
	}

	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[user.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound("users")
		}
		return nil, fmt.Errorf("failed to collect row from table:users: %w", err)
	}

	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	stmt := `
		SELECT
			EXISTS (
				SELECT
					1
				FROM
					users
				WHERE
					email = @email
			)
	`

	var exists bool
	if err := r.server.DB.Pool.QueryRow(ctx, stmt, pgx.NamedArgs{"email": email}).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user email: %w", err)
	}

	return exists, nil
}
