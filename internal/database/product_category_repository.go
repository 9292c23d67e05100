package database

import (
	"context"
	"fmt"

	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ProductCategoryRepository maneja la tabla de vínculos producto-categoría
type ProductCategoryRepository struct {
	logger *logrus.Logger
}

// NewProductCategoryRepository crea una nueva instancia del repositorio
func NewProductCategoryRepository(logger *logrus.Logger) *ProductCategoryRepository {
	return &ProductCategoryRepository{logger: logger}
}

// Create inserta un vínculo; el par (product_id, category_id) es único
func (r *ProductCategoryRepository) Create(ctx context.Context, q Querier, link *models.ProductCategory) error {
	link.CreatedAt = Now()

	query := `
		INSERT INTO product_categories (product_id, category_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := q.QueryRowContext(ctx, query, link.ProductID, link.CategoryID, link.CreatedAt).Scan(&link.ID); err != nil {
		return fmt.Errorf("error linking product %d to category %d: %w", link.ProductID, link.CategoryID, translateError(err))
	}
	return nil
}

// ListByProduct obtiene los vínculos de un producto en orden de inserción
func (r *ProductCategoryRepository) ListByProduct(ctx context.Context, q Querier, productID int64) ([]models.ProductCategory, error) {
	query := `
		SELECT id, product_id, category_id, created_at
		FROM product_categories
		WHERE product_id = $1
		ORDER BY id
	`
	rows, err := q.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("error querying product categories: %w", err)
	}
	defer rows.Close()

	links := make([]models.ProductCategory, 0)
	for rows.Next() {
		var link models.ProductCategory
		if err := rows.Scan(&link.ID, &link.ProductID, &link.CategoryID, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning product category: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product categories: %w", err)
	}
	return links, nil
}

// DeleteByProduct elimina todos los vínculos de un producto
func (r *ProductCategoryRepository) DeleteByProduct(ctx context.Context, q Querier, productID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("error deleting product categories: %w", err)
	}
	return nil
}
