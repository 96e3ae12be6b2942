// Package garment defines closet items, the fixed catalog of categories,
// colors and clothing types, and the payloads used to create and browse them.
package garment

import (
	"strings"

	"github.com/deppfellow/vistual/internal/model"
	"github.com/deppfellow/vistual/internal/validation"
	"github.com/google/uuid"
)

// ImageURLPrefix is where stored images are served from.
const ImageURLPrefix = "/api/v1/images/"

type Garment struct {
	model.Base
	UserID   uuid.UUID    `json:"user_id" db:"user_id"`
	Name     string       `json:"name" db:"name"`
	Category Category     `json:"category" db:"category"`
	Color    Color        `json:"color" db:"color"`
	ImageKey string       `json:"image_key" db:"image_key"`
	Type     ClothingType `json:"type" db:"-"`
	ImageURL string       `json:"image_url" db:"-"`
}

// Decorate fills the fields derived from stored columns.
func (g *Garment) Decorate() {
	g.Type = g.Category.Type()
	g.ImageURL = ImageURLPrefix + g.ImageKey
}

// ------------------------------------------------------------

type CreateGarmentPayload struct {
	Name     string   `json:"name" validate:"required,min=2,max=50"`
	Category Category `json:"category"`
	Color    Color    `json:"color"`
	ImageKey string   `json:"image_key" validate:"required"`
}

// Validate trims the name, defaults category and color and resolves
// display names ("Pantalón") to codes.
func (p *CreateGarmentPayload) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.ImageKey = strings.TrimSpace(p.ImageKey)

	if err := validation.Struct(p); err != nil {
		return err
	}

	var errs validation.CustomValidationErrors

	if strings.TrimSpace(string(p.Category)) == "" {
		p.Category = CategoryOther
	} else if c, ok := ParseCategory(string(p.Category)); ok {
		p.Category = c
	} else {
		errs = append(errs, validation.CustomValidationError{Field: "category", Message: "is not a known category"})
	}

	if strings.TrimSpace(string(p.Color)) == "" {
		p.Color = ColorWhite
	} else if c, ok := ParseColor(string(p.Color)); ok {
		p.Color = c
	} else {
		errs = append(errs, validation.CustomValidationError{Field: "color", Message: "is not a known color"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ------------------------------------------------------------

type GetGarmentPayload struct {
	ID uuid.UUID `param:"id" validate:"required"`
}

func (p *GetGarmentPayload) Validate() error {
	return validation.Struct(p)
}

type DeleteGarmentPayload struct {
	ID uuid.UUID `param:"id" validate:"required"`
}

func (p *DeleteGarmentPayload) Validate() error {
	return validation.Struct(p)
}

// ------------------------------------------------------------

const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortName   = "name"

	DefaultLimit = 20
	MaxLimit     = 100
)

// ListGarmentsQuery filters a closet. Filters combine with AND.
type ListGarmentsQuery struct {
	Category string `query:"category"`
	Color    string `query:"color"`
	Type     string `query:"type"`
	Search   string `query:"search"`
	Sort     string `query:"sort" validate:"oneof=newest oldest name"`
	Page     int    `query:"page" validate:"min=1"`
	Limit    int    `query:"limit" validate:"min=1,max=100"`

	// Resolved by Validate.
	Categories []Category `query:"-"`
	ColorCode  Color      `query:"-"`
}

// Validate applies defaults and resolves the category, color and type
// filters into codes the repository can use directly.
func (q *ListGarmentsQuery) Validate() error {
	q.Search = strings.TrimSpace(q.Search)
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	q.Sort = strings.ToLower(q.Sort)
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}

	if err := validation.Struct(q); err != nil {
		return err
	}

	var errs validation.CustomValidationErrors
	q.Categories = nil
	q.ColorCode = ""

	if strings.TrimSpace(q.Category) != "" {
		c, ok := ParseCategory(q.Category)
		if !ok {
			errs = append(errs, validation.CustomValidationError{Field: "category", Message: "is not a known category"})
		} else {
			q.Categories = []Category{c}
		}
	}

	if strings.TrimSpace(q.Type) != "" {
		t, ok := LookupClothingType(q.Type)
		if !ok {
			errs = append(errs, validation.CustomValidationError{Field: "type", Message: "must be one of: top, bottom, dress, shoes, accessory"})
		} else {
			q.Categories = intersect(q.Categories, CategoriesOfType(t), strings.TrimSpace(q.Category) != "")
		}
	}

	if strings.TrimSpace(q.Color) != "" {
		c, ok := ParseColor(q.Color)
		if !ok {
			errs = append(errs, validation.CustomValidationError{Field: "color", Message: "is not a known color"})
		} else {
			q.ColorCode = c
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FiltersByCategory reports whether Categories restricts the result,
// including the case where category and type exclude each other.
func (q *ListGarmentsQuery) FiltersByCategory() bool {
	return strings.TrimSpace(q.Category) != "" || strings.TrimSpace(q.Type) != ""
}

func (q *ListGarmentsQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

func intersect(current, byType []Category, hasCategory bool) []Category {
	if !hasCategory {
		return byType
	}
	out := []Category{}
	for _, c := range current {
		for _, t := range byType {
			if c == t {
				out = append(out, c)
			}
		}
	}
	return out
}

// ------------------------------------------------------------

type CategoryCount struct {
	Category Category `json:"category" db:"category"`
	Name     string   `json:"name" db:"-"`
	Count    int      `json:"count" db:"count"`
}

// Stats summarizes a closet.
type Stats struct {
	Total      int             `json:"total"`
	ByCategory []CategoryCount `json:"by_category"`
}

// Facets lists the categories and colors present in a closet, in catalog order.
type Facets struct {
	Categories []Category `json:"categories"`
	Colors     []Color    `json:"colors"`
}

// Group is one carousel row.
type Group struct {
	Category Category     `json:"category"`
	Name     string       `json:"name"`
	Type     ClothingType `json:"type"`
	Garments []Garment    `json:"garments"`
}

// ImageUpload describes a freshly stored image.
type ImageUpload struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type GetImagePayload struct {
	Key string `param:"key" validate:"required"`
}

func (p *GetImagePayload) Validate() error {
	return validation.Struct(p)
}

// ImageRef is one garment's claim on a stored image.
type ImageRef struct {
	UserID   uuid.UUID `db:"user_id"`
	ImageKey string    `db:"image_key"`
}
