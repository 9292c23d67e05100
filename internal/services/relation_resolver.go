package services

import (
	"context"
	"fmt"

	"github.com/hypernova-labs/catalog-service/internal/database"
	"github.com/hypernova-labs/catalog-service/internal/models"
)

// RelationResolver arma la vista de lectura de un producto con su marca y sus categorías.
// Es de solo lectura: no crea ni repara relaciones.
type RelationResolver struct {
	brands     BrandStore
	categories CategoryStore
	links      ProductCategoryStore
}

// NewRelationResolver crea una nueva instancia del resolver
func NewRelationResolver(brands BrandStore, categories CategoryStore, links ProductCategoryStore) *RelationResolver {
	return &RelationResolver{
		brands:     brands,
		categories: categories,
		links:      links,
	}
}

// Resolve retorna el producto con brand (o null si no existe) y categories en el orden de los vínculos.
// Los vínculos cuya categoría ya no existe se omiten.
func (r *RelationResolver) Resolve(ctx context.Context, q database.Querier, product *models.Product) (*models.ProductRead, error) {
	read := &models.ProductRead{
		Product:    *product,
		Categories: []models.Category{},
	}

	if product.BrandID != nil {
		brand, err := r.brands.GetByID(ctx, q, *product.BrandID)
		switch {
		case err == nil:
			read.Brand = brand
		case isNotFound(err):
		default:
			return nil, fmt.Errorf("error resolving brand of product %d: %w", product.ID, err)
		}
	}

	links, err := r.links.ListByProduct(ctx, q, product.ID)
	if err != nil {
		return nil, fmt.Errorf("error resolving categories of product %d: %w", product.ID, err)
	}
	if len(links) == 0 {
		return read, nil
	}

	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.CategoryID)
	}
	found, err := r.categories.GetByIDs(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("error resolving categories of product %d: %w", product.ID, err)
	}

	byID := make(map[int64]models.Category, len(found))
	for _, category := range found {
		byID[category.ID] = category
	}
	for _, link := range links {
		if category, ok := byID[link.CategoryID]; ok {
			read.Categories = append(read.Categories, category)
		}
	}

	return read, nil
}

// ResolveAll aplica Resolve a cada producto conservando el orden
func (r *RelationResolver) ResolveAll(ctx context.Context, q database.Querier, products []models.Product) ([]models.ProductRead, error) {
	reads := make([]models.ProductRead, 0, len(products))
	for i := range products {
		read, err := r.Resolve(ctx, q, &products[i])
		if err != nil {
			return nil, err
		}
		reads = append(reads, *read)
	}
	return reads, nil
}
