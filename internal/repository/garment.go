package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/deppfellow/vistual/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type GarmentRepository struct {
	server *server.Server
}

func NewGarmentRepository(s *server.Server) *GarmentRepository {
	return &GarmentRepository{server: s}
}

func (r *GarmentRepository) Create(ctx context.Context, userID uuid.UUID, payload *garment.CreateGarmentPayload) (*garment.Garment, error) {
	stmt := `
		INSERT INTO
			garments (user_id, name, category, color, image_key)
		VALUES
			(@user_id, @name, @category, @color, @image_key)
		RETURNING
			*
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"user_id":   userID,
		"name":      payload.Name,
		"category":  string(payload.Category),
		"color":     string(payload.Color),
		"image_key": payload.ImageKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute create garment query for user_id=%s: %w", userID, err)
	}

	g, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[garment.Garment])
	if err != nil {
		return nil, fmt.Errorf("failed to collect row from table:garments for user_id=%s: %w", userID, err)
	}

	g.Decorate()
	return &g, nil
}

func (r *GarmentRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*garment.Garment, error) {
	stmt := `
		SELECT
			*
		FROM
			garments
		WHERE
			id = @id
			AND user_id = @user_id
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"id":      id,
		"user_id": userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get garment query for id=%s: %w", id, err)
	}

	g, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[garment.Garment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound("garments")
		}
		return nil, fmt.Errorf("failed to collect row from table:garments for id=%s: %w", id, err)
	}

	g.Decorate()
	return &g, nil
}

// List returns one page of the user's garments and the total matching count.
func (r *GarmentRepository) List(ctx context.Context, userID uuid.UUID, query *garment.ListGarmentsQuery) ([]garment.Garment, int, error) {
	where, args := buildListFilter(userID, query)

	countStmt := `
		SELECT
			COUNT(*)
		FROM
			garments
		WHERE
			` + where

	var total int
	if err := r.server.DB.Pool.QueryRow(ctx, countStmt, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count garments for user_id=%s: %w", userID, err)
	}

	args["limit"] = query.Limit
	args["offset"] = query.Offset()

	stmt := `
		SELECT
			*
		FROM
			garments
		WHERE
			` + where + `
		ORDER BY
			` + listOrder(query.Sort) + `
		LIMIT
			@limit
		OFFSET
			@offset
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute list garments query for user_id=%s: %w", userID, err)
	}

	garments, err := pgx.CollectRows(rows, pgx.RowToStructByName[garment.Garment])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to collect rows from table:garments for user_id=%s: %w", userID, err)
	}

	for i := range garments {
		garments[i].Decorate()
	}

	return garments, total, nil
}

// ListAll returns every garment the user owns, newest first.
func (r *GarmentRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]garment.Garment, error) {
	stmt := `
		SELECT
			*
		FROM
			garments
		WHERE
			user_id = @user_id
		ORDER BY
			created_at DESC,
			id DESC
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute list all garments query for user_id=%s: %w", userID, err)
	}

	garments, err := pgx.CollectRows(rows, pgx.RowToStructByName[garment.Garment])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:garments for user_id=%s: %w", userID, err)
	}

	for i := range garments {
		garments[i].Decorate()
	}

	return garments, nil
}

// Delete removes the garment and returns the image key it referenced.
func (r *GarmentRepository) Delete(ctx context.Context, userID, id uuid.UUID) (string, error) {
	stmt := `
		DELETE FROM garments
		WHERE
			id = @id
			AND user_id = @user_id
		RETURNING
			image_key
	`

	var imageKey string
	err := r.server.DB.Pool.QueryRow(ctx, stmt, pgx.NamedArgs{
		"id":      id,
		"user_id": userID,
	}).Scan(&imageKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", sqlerr.NotFound("garments")
		}
		return "", fmt.Errorf("failed to delete garment id=%s: %w", id, err)
	}

	return imageKey, nil
}

// CountByCategory returns per-category counts in catalog order.
func (r *GarmentRepository) CountByCategory(ctx context.Context, userID uuid.UUID) ([]garment.CategoryCount, error) {
	stmt := `
		SELECT
			category,
			COUNT(*) AS count
		FROM
			garments
		WHERE
			user_id = @user_id
		GROUP BY
			category
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute count garments query for user_id=%s: %w", userID, err)
	}

	counts, err := pgx.CollectRows(rows, pgx.RowToStructByName[garment.CategoryCount])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:garments for user_id=%s: %w", userID, err)
	}

	for i := range counts {
		counts[i].Name = counts[i].Category.DisplayName()
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Category.Rank() < counts[j].Category.Rank()
	})

	return counts, nil
}

// Facets returns the distinct categories and colors in the user's closet.
func (r *GarmentRepository) Facets(ctx context.Context, userID uuid.UUID) (*garment.Facets, error) {
	args := pgx.NamedArgs{"user_id": userID}

	rows, err := r.server.DB.Pool.Query(ctx, `SELECT DISTINCT category FROM garments WHERE user_id = @user_id`, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute category facets query for user_id=%s: %w", userID, err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[garment.Category])
	if err != nil {
		return nil, fmt.Errorf("failed to collect category facets for user_id=%s: %w", userID, err)
	}

	rows, err = r.server.DB.Pool.Query(ctx, `SELECT DISTINCT color FROM garments WHERE user_id = @user_id`, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute color facets query for user_id=%s: %w", userID, err)
	}
	colors, err := pgx.CollectRows(rows, pgx.RowTo[garment.Color])
	if err != nil {
		return nil, fmt.Errorf("failed to collect color facets for user_id=%s: %w", userID, err)
	}

	sort.SliceStable(categories, func(i, j int) bool { return categories[i].Rank() < categories[j].Rank() })
	sort.SliceStable(colors, func(i, j int) bool { return colors[i].Rank() < colors[j].Rank() })

	return &garment.Facets{Categories: categories, Colors: colors}, nil
}

// ListImageRefs returns every (owner, image) pair still referenced by a garment.
func (r *GarmentRepository) ListImageRefs(ctx context.Context) ([]garment.ImageRef, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT user_id, image_key FROM garments`)
	if err != nil {
		return nil, fmt.Errorf("failed to execute image refs query: %w", err)
	}

	refs, err := pgx.CollectRows(rows, pgx.RowToStructByName[garment.ImageRef])
	if err != nil {
		return nil, fmt.Errorf("failed to collect image refs: %w", err)
	}

	return refs, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildListFilter returns the WHERE clause and its named arguments.
func buildListFilter(userID uuid.UUID, query *garment.ListGarmentsQuery) (string, pgx.NamedArgs) {
	conditions := []string{"user_id = @user_id"}
	args := pgx.NamedArgs{"user_id": userID}

	if query.FiltersByCategory() {
		categories := make([]string, 0, len(query.Categories))
		for _, c := range query.Categories {
			categories = append(categories, string(c))
		}
		conditions = append(conditions, "category = ANY(@categories)")
		args["categories"] = categories
	}

	if query.ColorCode != "" {
		conditions = append(conditions, "color = @color")
		args["color"] = string(query.ColorCode)
	}

	if query.Search != "" {
		conditions = append(conditions, `name ILIKE @search ESCAPE '\'`)
		args["search"] = "%" + likeEscaper.Replace(query.Search) + "%"
	}

	return strings.Join(conditions, " AND "), args
}

func listOrder(sortBy string) string {
	switch sortBy {
	case garment.SortOldest:
		return "created_at ASC, id ASC"
	case garment.SortName:
		return "LOWER(name) ASC, created_at DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

// ImageInUse reports whether any of the user's garments still points at key.
func (r *GarmentRepository) ImageInUse(ctx context.Context, userID uuid.UUID, key string) (bool, error) {
	stmt := `
		SELECT
			EXISTS (
				SELECT
					1
				FROM
					garments
				WHERE
					user_id = @user_id
					AND image_key = @image_key
			)
	`

	var inUse bool
	err := r.server.DB.Pool.QueryRow(ctx, stmt, pgx.NamedArgs{
		"user_id":   userID,
		"image_key": key,
	}).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("failed to check image usage for key=%s: %w", key, err)
	}

	return inUse, nil
}
