package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ProductRepository maneja las operaciones de base de datos para Product
type ProductRepository struct {
	logger *logrus.Logger
}

// NewProductRepository crea una nueva instancia del repositorio
func NewProductRepository(logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{logger: logger}
}

const productColumns = `p.id, p.barcode, p.name, p.description, p.brand_id, p.measure_type,
	p.measure_value, p.qtt, p.status, p.images, p.created_at, p.updated_at`

// Create inserta un nuevo producto
func (r *ProductRepository) Create(ctx context.Context, q Querier, product *models.Product) error {
	now := Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
		INSERT INTO products (
			barcode, name, description, brand_id, measure_type, measure_value,
			qtt, status, images, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING id
	`
	err := q.QueryRowContext(ctx, query,
		product.Barcode, product.Name, product.Description, product.BrandID,
		measureTypeArg(product.MeasureType), product.MeasureValue, product.Qtt,
		product.Status, product.Images, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("error creating product: %w", translateError(err))
	}

	return nil
}

// GetByID obtiene un producto por ID
func (r *ProductRepository) GetByID(ctx context.Context, q Querier, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	product, err := scanProduct(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("error querying product %d: %w", id, translateError(err))
	}
	return product, nil
}

// GetByBarcode obtiene un producto por código de barras exacto
func (r *ProductRepository) GetByBarcode(ctx context.Context, q Querier, barcode string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.barcode = $1`

	product, err := scanProduct(q.QueryRowContext(ctx, query, barcode))
	if err != nil {
		return nil, fmt.Errorf("error querying product by barcode: %w", translateError(err))
	}
	return product, nil
}

// List obtiene productos aplicando los filtros en AND. Limit 0 significa sin límite.
// El filtro por categoría usa EXISTS para no duplicar productos.
func (r *ProductRepository) List(ctx context.Context, q Querier, filter models.ProductFilter) ([]models.Product, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		conditions = append(conditions, "p.status = "+arg(*filter.Status))
	}
	if filter.BrandID != nil {
		conditions = append(conditions, "p.brand_id = "+arg(*filter.BrandID))
	}
	if filter.MeasureType != nil {
		conditions = append(conditions, "p.measure_type = "+arg(string(*filter.MeasureType)))
	}
	if filter.CategoryID != nil {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = p.id AND pc.category_id = "+arg(*filter.CategoryID)+")")
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + productColumns + ` FROM products p`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY p.id")
	if filter.Skip > 0 {
		sb.WriteString(" OFFSET " + arg(filter.Skip))
	}
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(filter.Limit))
	}

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("error querying products: %w", err)
	}
	return collectProducts(rows)
}

// Search busca productos por subcadena de nombre y/o código de barras (ambos en AND)
func (r *ProductRepository) Search(ctx context.Context, q Querier, search models.ProductSearch) ([]models.Product, error) {
	var (
		conditions []string
		args       []any
	)
	if search.Name != "" {
		args = append(args, containsPattern(search.Name))
		conditions = append(conditions, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}
	if search.Barcode != "" {
		args = append(args, containsPattern(search.Barcode))
		conditions = append(conditions, fmt.Sprintf("p.barcode ILIKE $%d", len(args)))
	}
	if len(conditions) == 0 {
		return nil, fmt.Errorf("search requires at least one criterion")
	}

	query := `SELECT ` + productColumns + ` FROM products p WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY p.id`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error searching products: %w", err)
	}
	return collectProducts(rows)
}

// Update persiste todos los campos editables y refresca updated_at
func (r *ProductRepository) Update(ctx context.Context, q Querier, product *models.Product) error {
	product.UpdatedAt = Now()

	query := `
		UPDATE products
		SET barcode = $1, name = $2, description = $3, brand_id = $4, measure_type = $5,
		    measure_value = $6, qtt = $7, status = $8, images = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := q.ExecContext(ctx, query,
		product.Barcode, product.Name, product.Description, product.BrandID,
		measureTypeArg(product.MeasureType), product.MeasureValue, product.Qtt,
		product.Status, product.Images, product.UpdatedAt, product.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating product: %w", translateError(err))
	}
	return expectAffected(result, "product", product.ID)
}

// Delete elimina un producto; sus vínculos caen por ON DELETE CASCADE
func (r *ProductRepository) Delete(ctx context.Context, q Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting product: %w", translateError(err))
	}
	return expectAffected(result, "product", id)
}

func measureTypeArg(m *models.MeasureType) any {
	if m == nil {
		return nil
	}
	return string(*m)
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		product      models.Product
		barcode      sql.NullString
		description  sql.NullString
		brandID      sql.NullInt64
		measureType  sql.NullString
		measureValue decimal.NullDecimal
		qtt          sql.NullInt64
		images       sql.NullString
	)

	err := row.Scan(
		&product.ID, &barcode, &product.Name, &description, &brandID, &measureType,
		&measureValue, &qtt, &product.Status, &images, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if barcode.Valid {
		product.Barcode = &barcode.String
	}
	if description.Valid {
		product.Description = &description.String
	}
	if brandID.Valid {
		product.BrandID = &brandID.Int64
	}
	if measureType.Valid {
		m := models.MeasureType(measureType.String)
		product.MeasureType = &m
	}
	if measureValue.Valid {
		product.MeasureValue = &measureValue.Decimal
	}
	if qtt.Valid {
		n := int(qtt.Int64)
		product.Qtt = &n
	}
	if images.Valid {
		product.Images = &images.String
	}

	return &product, nil
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
