package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// CategoryRepository maneja las operaciones de base de datos para Category
type CategoryRepository struct {
	logger *logrus.Logger
}

// NewCategoryRepository crea una nueva instancia del repositorio
func NewCategoryRepository(logger *logrus.Logger) *CategoryRepository {
	return &CategoryRepository{logger: logger}
}

const categoryColumns = `id, name, description, created_at, updated_at`

// Create inserta una nueva categoría
func (r *CategoryRepository) Create(ctx context.Context, q Querier, category *models.Category) error {
	now := Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	query := `
		INSERT INTO categories (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := q.QueryRowContext(ctx, query,
		category.Name, category.Description, category.CreatedAt, category.UpdatedAt,
	).Scan(&category.ID)
	if err != nil {
		return fmt.Errorf("error creating category: %w", translateError(err))
	}

	return nil
}

// GetByID obtiene una categoría por ID
func (r *CategoryRepository) GetByID(ctx context.Context, q Querier, id int64) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	category, err := scanCategory(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("error querying category %d: %w", id, translateError(err))
	}
	return category, nil
}

// GetByIDs obtiene las categorías existentes entre los IDs dados, en cualquier orden
func (r *CategoryRepository) GetByIDs(ctx context.Context, q Querier, ids []int64) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ANY($1)`
	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error querying categories by id: %w", err)
	}
	return collectCategories(rows)
}

// GetByName obtiene una categoría por nombre exacto
func (r *CategoryRepository) GetByName(ctx context.Context, q Querier, name string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = $1`

	category, err := scanCategory(q.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("error querying category by name: %w", translateError(err))
	}
	return category, nil
}

// List obtiene una página de categorías
func (r *CategoryRepository) List(ctx context.Context, q Querier, skip, limit int) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY id OFFSET $1 LIMIT $2`

	rows, err := q.QueryContext(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying categories: %w", err)
	}
	return collectCategories(rows)
}

// SearchByName busca categorías por subcadena del nombre
func (r *CategoryRepository) SearchByName(ctx context.Context, q Querier, name string) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name ILIKE $1 ORDER BY id`

	rows, err := q.QueryContext(ctx, query, containsPattern(name))
	if err != nil {
		return nil, fmt.Errorf("error searching categories: %w", err)
	}
	return collectCategories(rows)
}

// Update persiste nombre y descripción y refresca updated_at
func (r *CategoryRepository) Update(ctx context.Context, q Querier, category *models.Category) error {
	category.UpdatedAt = Now()

	query := `
		UPDATE categories
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := q.ExecContext(ctx, query, category.Name, category.Description, category.UpdatedAt, category.ID)
	if err != nil {
		return fmt.Errorf("error updating category: %w", translateError(err))
	}
	return expectAffected(result, "category", category.ID)
}

// Delete elimina una categoría; sus vínculos caen por ON DELETE CASCADE
func (r *CategoryRepository) Delete(ctx context.Context, q Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting category: %w", translateError(err))
	}
	return expectAffected(result, "category", id)
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var category models.Category
	var description sql.NullString
	if err := row.Scan(&category.ID, &category.Name, &description, &category.CreatedAt, &category.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		category.Description = &description.String
	}
	return &category, nil
}

func collectCategories(rows *sql.Rows) ([]models.Category, error) {
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}
