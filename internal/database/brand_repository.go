package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/sirupsen/logrus"
)

// BrandRepository maneja las operaciones de base de datos para Brand
type BrandRepository struct {
	logger *logrus.Logger
}

// NewBrandRepository crea una nueva instancia del repositorio
func NewBrandRepository(logger *logrus.Logger) *BrandRepository {
	return &BrandRepository{logger: logger}
}

const brandColumns = `id, name, created_at, updated_at`

// Create inserta una nueva marca y completa su ID y timestamps
func (r *BrandRepository) Create(ctx context.Context, q Querier, brand *models.Brand) error {
	now := Now()
	brand.CreatedAt = now
	brand.UpdatedAt = now

	query := `
		INSERT INTO brands (name, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := q.QueryRowContext(ctx, query, brand.Name, brand.CreatedAt, brand.UpdatedAt).Scan(&brand.ID); err != nil {
		return fmt.Errorf("error creating brand: %w", translateError(err))
	}

	return nil
}

// GetByID obtiene una marca por ID
func (r *BrandRepository) GetByID(ctx context.Context, q Querier, id int64) (*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE id = $1`

	brand, err := scanBrand(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("error querying brand %d: %w", id, translateError(err))
	}
	return brand, nil
}

// GetByName obtiene una marca por nombre exacto
func (r *BrandRepository) GetByName(ctx context.Context, q Querier, name string) (*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE name = $1`

	brand, err := scanBrand(q.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("error querying brand by name: %w", translateError(err))
	}
	return brand, nil
}

// List obtiene una página de marcas
func (r *BrandRepository) List(ctx context.Context, q Querier, skip, limit int) ([]models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands ORDER BY id OFFSET $1 LIMIT $2`

	rows, err := q.QueryContext(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying brands: %w", err)
	}
	return collectBrands(rows)
}

// SearchByName busca marcas cuyo nombre contenga el término (sin distinguir mayúsculas)
func (r *BrandRepository) SearchByName(ctx context.Context, q Querier, name string) ([]models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE name ILIKE $1 ORDER BY id`

	rows, err := q.QueryContext(ctx, query, containsPattern(name))
	if err != nil {
		return nil, fmt.Errorf("error searching brands: %w", err)
	}
	return collectBrands(rows)
}

// Update persiste el nombre de la marca y refresca updated_at
func (r *BrandRepository) Update(ctx context.Context, q Querier, brand *models.Brand) error {
	brand.UpdatedAt = Now()

	query := `UPDATE brands SET name = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, brand.Name, brand.UpdatedAt, brand.ID)
	if err != nil {
		return fmt.Errorf("error updating brand: %w", translateError(err))
	}
	return expectAffected(result, "brand", brand.ID)
}

// Delete elimina una marca
func (r *BrandRepository) Delete(ctx context.Context, q Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting brand: %w", translateError(err))
	}
	return expectAffected(result, "brand", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBrand(row rowScanner) (*models.Brand, error) {
	var brand models.Brand
	if err := row.Scan(&brand.ID, &brand.Name, &brand.CreatedAt, &brand.UpdatedAt); err != nil {
		return nil, err
	}
	return &brand, nil
}

func collectBrands(rows *sql.Rows) ([]models.Brand, error) {
	defer rows.Close()

	brands := make([]models.Brand, 0)
	for rows.Next() {
		brand, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning brand: %w", err)
		}
		brands = append(brands, *brand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brands: %w", err)
	}
	return brands, nil
}

// expectAffected traduce cero filas afectadas en ErrNotFound
func expectAffected(result sql.Result, entity string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern arma un patrón LIKE de subcadena con los comodines del usuario escapados
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
