package garment

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Category string

const (
	CategoryShirt     Category = "shirt"
	CategoryPants     Category = "pants"
	CategoryDress     Category = "dress"
	CategoryShoes     Category = "shoes"
	CategoryAccessory Category = "accessory"
	CategoryJacket    Category = "jacket"
	CategorySkirt     Category = "skirt"
	CategoryOther     Category = "other"
)

type Color string

const (
	ColorBlack  Color = "black"
	ColorWhite  Color = "white"
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorPink   Color = "pink"
	ColorGray   Color = "gray"
	ColorBrown  Color = "brown"
	ColorPurple Color = "purple"
)

// ClothingType is the coarse grouping a category belongs to.
type ClothingType string

const (
	TypeTop       ClothingType = "top"
	TypeBottom    ClothingType = "bottom"
	TypeDress     ClothingType = "dress"
	TypeShoes     ClothingType = "shoes"
	TypeAccessory ClothingType = "accessory"
)

type CategoryInfo struct {
	Code Category     `json:"code"`
	Name string       `json:"name"`
	Type ClothingType `json:"type"`
}

type ColorInfo struct {
	Code Color  `json:"code"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type TypeInfo struct {
	Code ClothingType `json:"code"`
	Name string       `json:"name"`
}

// Catalog lists everything a client needs to build filters and forms.
type Catalog struct {
	Categories []CategoryInfo `json:"categories"`
	Colors     []ColorInfo    `json:"colors"`
	Types      []TypeInfo     `json:"types"`
}

// Display order is the order below.
var (
	categories = []CategoryInfo{
		{CategoryShirt, "Camisa", TypeTop},
		{CategoryPants, "Pantalón", TypeBottom},
		{CategoryDress, "Vestido", TypeDress},
		{CategoryShoes, "Zapatos", TypeShoes},
		{CategoryAccessory, "Accesorio", TypeAccessory},
		{CategoryJacket, "Chaqueta", TypeTop},
		{CategorySkirt, "Falda", TypeBottom},
		{CategoryOther, "Otros", TypeTop},
	}

	colors = []ColorInfo{
		{ColorBlack, "Negro", "#000000"},
		{ColorWhite, "Blanco", "#FFFFFF"},
		{ColorBlue, "Azul", "#0000FF"},
		{ColorRed, "Rojo", "#FF0000"},
		{ColorGreen, "Verde", "#00FF00"},
		{ColorYellow, "Amarillo", "#FFFF00"},
		{ColorPink, "Rosa", "#FFC0CB"},
		{ColorGray, "Gris", "#808080"},
		{ColorBrown, "Marrón", "#8B4513"},
		{ColorPurple, "Morado", "#800080"},
	}

	types = []TypeInfo{
		{TypeTop, "Superior"},
		{TypeBottom, "Inferior"},
		{TypeDress, "Vestido"},
		{TypeShoes, "Zapatos"},
		{TypeAccessory, "Accesorio"},
	}
)

// GetCatalog returns a copy of the catalog.
func GetCatalog() Catalog {
	return Catalog{
		Categories: append([]CategoryInfo(nil), categories...),
		Colors:     append([]ColorInfo(nil), colors...),
		Types:      append([]TypeInfo(nil), types...),
	}
}

// fold lowercases and strips accents so "PANTALON" matches "Pantalón".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return cases.Fold().String(out)
}

// ParseCategory accepts a code or a display name.
func ParseCategory(s string) (Category, bool) {
	key := fold(s)
	for _, c := range categories {
		if key == string(c.Code) || key == fold(c.Name) {
			return c.Code, true
		}
	}
	return "", false
}

func (c Category) Valid() bool {
	_, ok := c.info()
	return ok
}

func (c Category) info() (CategoryInfo, bool) {
	for _, info := range categories {
		if info.Code == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

// DisplayName returns the Spanish label, or the code itself when unknown.
func (c Category) DisplayName() string {
	if info, ok := c.info(); ok {
		return info.Name
	}
	return string(c)
}

// Type maps a category to its clothing type; unknown categories are tops.
func (c Category) Type() ClothingType {
	if info, ok := c.info(); ok {
		return info.Type
	}
	return TypeTop
}

// Rank is the category's position in the catalog, unknown codes sort last.
func (c Category) Rank() int {
	for i, info := range categories {
		if info.Code == c {
			return i
		}
	}
	return len(categories)
}

// CategoriesOfType lists the categories mapped to t, in catalog order.
func CategoriesOfType(t ClothingType) []Category {
	var out []Category
	for _, info := range categories {
		if info.Type == t {
			out = append(out, info.Code)
		}
	}
	return out
}

// ParseColor accepts a code or a display name.
func ParseColor(s string) (Color, bool) {
	key := fold(s)
	for _, c := range colors {
		if key == string(c.Code) || key == fold(c.Name) {
			return c.Code, true
		}
	}
	return "", false
}

func (c Color) Valid() bool {
	_, ok := c.info()
	return ok
}

func (c Color) info() (ColorInfo, bool) {
	for _, info := range colors {
		if info.Code == c {
			return info, true
		}
	}
	return ColorInfo{}, false
}

func (c Color) DisplayName() string {
	if info, ok := c.info(); ok {
		return info.Name
	}
	return string(c)
}

// Hex returns the swatch color, empty when unknown.
func (c Color) Hex() string {
	info, _ := c.info()
	return info.Hex
}

func (c Color) Rank() int {
	for i, info := range colors {
		if info.Code == c {
			return i
		}
	}
	return len(colors)
}

var typeAliases = map[string]ClothingType{
	"superior":  TypeTop,
	"top":       TypeTop,
	"inferior":  TypeBottom,
	"bottom":    TypeBottom,
	"vestido":   TypeDress,
	"dress":     TypeDress,
	"zapatos":   TypeShoes,
	"shoes":     TypeShoes,
	"accesorio": TypeAccessory,
	"accessory": TypeAccessory,
}

// LookupClothingType is the strict form of ParseClothingType.
func LookupClothingType(s string) (ClothingType, bool) {
	t, ok := typeAliases[fold(s)]
	return t, ok
}

// ParseClothingType accepts Spanish or English names and falls back to TypeTop.
func ParseClothingType(s string) ClothingType {
	if t, ok := LookupClothingType(s); ok {
		return t
	}
	return TypeTop
}

func (t ClothingType) DisplayName() string {
	for _, info := range types {
		if info.Code == t {
			return info.Name
		}
	}
	return string(t)
}
