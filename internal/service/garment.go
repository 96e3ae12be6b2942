package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/deppfellow/vistual/internal/errs"
	"github.com/deppfellow/vistual/internal/lib/storage"
	"github.com/deppfellow/vistual/internal/model"
	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExportHeader is the first row of the CSV export.
var ExportHeader = []string{"id", "name", "category", "color", "type", "image_key", "created_at"}

type GarmentService struct {
	garments GarmentStore
	images   ImageStore
	cache    StatsCache
	statsTTL time.Duration
}

func NewGarmentService(garments GarmentStore, images ImageStore, cache StatsCache, statsTTL time.Duration) *GarmentService {
	return &GarmentService{
		garments: garments,
		images:   images,
		cache:    cache,
		statsTTL: statsTTL,
	}
}

func statsKey(userID uuid.UUID) string {
	return "stats:" + userID.String()
}

func (g *GarmentService) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if err := g.cache.Delete(ctx, statsKey(userID)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate garment stats")
	}
}

func imageNotFound() error {
	return errs.NewNotFoundError("image not found", true, errs.Ptr("IMAGE_NOT_FOUND"))
}

func invalidImageKey() error {
	return errs.NewBadRequestError("invalid image key", true, errs.Ptr("INVALID_IMAGE_KEY"),
		[]errs.FieldError{{Field: "image_key", Error: "is not a valid image key"}}, nil)
}

// Create stores a garment whose image the caller has already uploaded.
func (g *GarmentService) Create(ctx context.Context, userID uuid.UUID, payload *garment.CreateGarmentPayload) (*garment.Garment, error) {
	exists, err := g.images.Exists(userID, payload.ImageKey)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			return nil, invalidImageKey()
		}
		return nil, err
	}
	if !exists {
		return nil, errs.NewBadRequestError("image not found, upload it first", true, errs.Ptr("IMAGE_NOT_FOUND"),
			[]errs.FieldError{{Field: "image_key", Error: "does not reference an uploaded image"}}, nil)
	}

	created, err := g.garments.Create(ctx, userID, payload)
	if err != nil {
		return nil, err
	}

	g.invalidateStats(ctx, userID)

	zerolog.Ctx(ctx).Info().
		Str("garment_id", created.ID.String()).
		Str("category", string(created.Category)).
		Msg("garment created")

	return created, nil
}

func (g *GarmentService) Get(ctx context.Context, userID, id uuid.UUID) (*garment.Garment, error) {
	return g.garments.GetByID(ctx, userID, id)
}

func (g *GarmentService) List(ctx context.Context, userID uuid.UUID, query *garment.ListGarmentsQuery) (*model.PaginatedResponse[garment.Garment], error) {
	garments, total, err := g.garments.List(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	return model.NewPaginatedResponse(garments, query.Page, query.Limit, total), nil
}

// Delete removes the garment, then its image unless another garment of
// the same user still uses it. Image removal failures are only logged.
func (g *GarmentService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	logger := zerolog.Ctx(ctx)

	imageKey, err := g.garments.Delete(ctx, userID, id)
	if err != nil {
		return err
	}

	g.invalidateStats(ctx, userID)

	inUse, err := g.garments.ImageInUse(ctx, userID, imageKey)
	if err != nil {
		logger.Warn().Err(err).Str("image_key", imageKey).Msg("could not check image usage, keeping image")
		return nil
	}
	if !inUse {
		if err := g.images.Remove(userID, imageKey); err != nil {
			logger.Warn().Err(err).Str("image_key", imageKey).Msg("failed to remove garment image")
		}
	}

	logger.Info().Str("garment_id", id.String()).Msg("garment deleted")
	return nil
}

// Stats is read through the cache and invalidated on create and delete.
func (g *GarmentService) Stats(ctx context.Context, userID uuid.UUID) (*garment.Stats, error) {
	var cached garment.Stats
	if g.cache.Get(ctx, statsKey(userID), &cached) {
		return &cached, nil
	}

	counts, err := g.garments.CountByCategory(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &garment.Stats{ByCategory: counts}
	if stats.ByCategory == nil {
		stats.ByCategory = []garment.CategoryCount{}
	}
	for _, c := range counts {
		stats.Total += c.Count
	}

	if err := g.cache.Set(ctx, statsKey(userID), stats, g.statsTTL); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to cache garment stats")
	}

	return stats, nil
}

func (g *GarmentService) Facets(ctx context.Context, userID uuid.UUID) (*garment.Facets, error) {
	facets, err := g.garments.Facets(ctx, userID)
	if err != nil {
		return nil, err
	}
	if facets.Categories == nil {
		facets.Categories = []garment.Category{}
	}
	if facets.Colors == nil {
		facets.Colors = []garment.Color{}
	}
	return facets, nil
}

// Grouped returns one carousel row per category present, in catalog order,
// each newest first.
func (g *GarmentService) Grouped(ctx context.Context, userID uuid.UUID) ([]garment.Group, error) {
	garments, err := g.garments.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return GroupByCategory(garments), nil
}

// GroupByCategory keeps the incoming order inside each group.
func GroupByCategory(garments []garment.Garment) []garment.Group {
	byCategory := make(map[garment.Category][]garment.Garment)
	for _, item := range garments {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	groups := []garment.Group{}
	for _, info := range garment.GetCatalog().Categories {
		items, ok := byCategory[info.Code]
		if !ok {
			continue
		}
		groups = append(groups, garment.Group{
			Category: info.Code,
			Name:     info.Name,
			Type:     info.Type,
			Garments: items,
		})
	}

	return groups
}

// Export renders the user's closet as CSV, newest first.
func (g *GarmentService) Export(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	garments, err := g.garments.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return WriteCSV(garments)
}

func WriteCSV(garments []garment.Garment) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, item := range garments {
		record := []string{
			item.ID.String(),
			item.Name,
			string(item.Category),
			string(item.Color),
			string(item.Category.Type()),
			item.ImageKey,
			item.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// UploadImage stores an image in the caller's directory.
func (g *GarmentService) UploadImage(ctx context.Context, userID uuid.UUID, r io.Reader) (*garment.ImageUpload, error) {
	img, err := g.images.Save(userID, r)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return nil, errs.NewPayloadTooLargeError("image is too large")
		case errors.Is(err, storage.ErrUnsupportedType):
			return nil, errs.NewUnsupportedMediaTypeError("only jpeg, png, webp, gif and heic images are accepted")
		case errors.Is(err, storage.ErrEmpty):
			return nil, errs.NewBadRequestError("image is empty", true, nil,
				[]errs.FieldError{{Field: "image", Error: "is required"}}, nil)
		default:
			return nil, err
		}
	}

	zerolog.Ctx(ctx).Info().
		Str("image_key", img.Key).
		Int64("size", img.Size).
		Msg("image uploaded")

	return &garment.ImageUpload{
		Key:         img.Key,
		URL:         garment.ImageURLPrefix + img.Key,
		ContentType: img.ContentType,
		Size:        img.Size,
	}, nil
}

// OpenImage reads one of the caller's images.
func (g *GarmentService) OpenImage(ctx context.Context, userID uuid.UUID, key string) (*storage.Image, error) {
	img, err := g.images.Read(userID, key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, imageNotFound()
		case errors.Is(err, storage.ErrInvalidKey):
			return nil, invalidImageKey()
		default:
			return nil, err
		}
	}
	return img, nil
}
