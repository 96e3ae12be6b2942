package garment

import (
	"errors"
	"testing"

	"github.com/deppfellow/vistual/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"shirt", CategoryShirt, true},
		{"Camisa", CategoryShirt, true},
		{"PANTALON", CategoryPants, true},
		{" pantalón ", CategoryPants, true},
		{"otros", CategoryOther, true},
		{"hat", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColor(t *testing.T) {
	c, ok := ParseColor("marron")
	require.True(t, ok)
	assert.Equal(t, ColorBrown, c)
	assert.Equal(t, "#8B4513", c.Hex())
	assert.Equal(t, "Marrón", c.DisplayName())

	_, ok = ParseColor("teal")
	assert.False(t, ok)
}

func TestParseClothingType(t *testing.T) {
	assert.Equal(t, TypeBottom, ParseClothingType("Inferior"))
	assert.Equal(t, TypeAccessory, ParseClothingType("accessory"))
	assert.Equal(t, TypeTop, ParseClothingType("whatever"))

	_, ok := LookupClothingType("whatever")
	assert.False(t, ok)
}

func TestCategoryType(t *testing.T) {
	assert.Equal(t, TypeTop, CategoryShirt.Type())
	assert.Equal(t, TypeTop, CategoryJacket.Type())
	assert.Equal(t, TypeTop, CategoryOther.Type())
	assert.Equal(t, TypeBottom, CategorySkirt.Type())
	assert.Equal(t, TypeDress, CategoryDress.Type())
	assert.Equal(t, []Category{CategoryPants, CategorySkirt}, CategoriesOfType(TypeBottom))
}

func TestGetCatalogIsACopy(t *testing.T) {
	c := GetCatalog()
	require.Len(t, c.Categories, 8)
	require.Len(t, c.Colors, 10)
	require.Len(t, c.Types, 5)

	c.Categories[0].Name = "changed"
	assert.Equal(t, "Camisa", CategoryShirt.DisplayName())
}

func TestCreateGarmentPayloadDefaults(t *testing.T) {
	p := CreateGarmentPayload{Name: "  Blue tee ", ImageKey: "a.png"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "Blue tee", p.Name)
	assert.Equal(t, CategoryOther, p.Category)
	assert.Equal(t, ColorWhite, p.Color)
}

func TestCreateGarmentPayloadResolvesDisplayNames(t *testing.T) {
	p := CreateGarmentPayload{Name: "Jeans", Category: "Pantalón", Color: "Azul", ImageKey: "a.png"}
	require.NoError(t, p.Validate())
	assert.Equal(t, CategoryPants, p.Category)
	assert.Equal(t, ColorBlue, p.Color)
}

func TestCreateGarmentPayloadErrors(t *testing.T) {
	assert.Error(t, (&CreateGarmentPayload{Name: " a ", ImageKey: "a.png"}).Validate())
	assert.Error(t, (&CreateGarmentPayload{Name: "Jeans"}).Validate())

	err := (&CreateGarmentPayload{Name: "Jeans", Category: "hat", Color: "teal", ImageKey: "a.png"}).Validate()
	var custom validation.CustomValidationErrors
	require.True(t, errors.As(err, &custom))
	assert.Len(t, custom, 2)
}

func TestListGarmentsQueryDefaults(t *testing.T) {
	q := ListGarmentsQuery{Search: "  "}
	require.NoError(t, q.Validate())
	assert.Equal(t, SortNewest, q.Sort)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Empty(t, q.Search)
	assert.False(t, q.FiltersByCategory())
	assert.Equal(t, 0, q.Offset())
}

func TestListGarmentsQueryFilters(t *testing.T) {
	q := ListGarmentsQuery{Type: "inferior", Color: "Negro", Page: 3, Limit: 10}
	require.NoError(t, q.Validate())
	assert.Equal(t, []Category{CategoryPants, CategorySkirt}, q.Categories)
	assert.Equal(t, ColorBlack, q.ColorCode)
	assert.Equal(t, 20, q.Offset())

	both := ListGarmentsQuery{Category: "shirt", Type: "bottom"}
	require.NoError(t, both.Validate())
	assert.True(t, both.FiltersByCategory())
	assert.Empty(t, both.Categories)
}

func TestListGarmentsQueryRejects(t *testing.T) {
	assert.Error(t, (&ListGarmentsQuery{Sort: "price"}).Validate())
	assert.Error(t, (&ListGarmentsQuery{Limit: 101}).Validate())
	assert.Error(t, (&ListGarmentsQuery{Page: -1}).Validate())
	assert.Error(t, (&ListGarmentsQuery{Type: "hat"}).Validate())
}

func TestDecorate(t *testing.T) {
	g := Garment{Category: CategorySkirt, ImageKey: "k.png"}
	g.Decorate()
	assert.Equal(t, TypeBottom, g.Type)
	assert.Equal(t, "/api/v1/images/k.png", g.ImageURL)
}
