package service

import "github.com/deppfellow/vistual/internal/model/garment"

type CatalogService struct {
	catalog garment.Catalog
}

func NewCatalogService() *CatalogService {
	return &CatalogService{catalog: garment.GetCatalog()}
}

// Catalog lists the categories, colors and clothing types clients may use.
func (c *CatalogService) Catalog() garment.Catalog {
	return c.catalog
}
