package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/hypernova-labs/catalog-service/internal/database"
	"github.com/hypernova-labs/catalog-service/internal/models"
)

// Transactor abre la transacción que envuelve cada operación de servicio
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(q database.Querier) error) error
}

// BrandStore es el acceso a datos de marcas
type BrandStore interface {
	Create(ctx context.Context, q database.Querier, brand *models.Brand) error
	GetByID(ctx context.Context, q database.Querier, id int64) (*models.Brand, error)
	GetByName(ctx context.Context, q database.Querier, name string) (*models.Brand, error)
	List(ctx context.Context, q database.Querier, skip, limit int) ([]models.Brand, error)
	SearchByName(ctx context.Context, q database.Querier, name string) ([]models.Brand, error)
	Update(ctx context.Context, q database.Querier, brand *models.Brand) error
	Delete(ctx context.Context, q database.Querier, id int64) error
}

// CategoryStore es el acceso a datos de categorías
type CategoryStore interface {
	Create(ctx context.Context, q database.Querier, category *models.Category) error
	GetByID(ctx context.Context, q database.Querier, id int64) (*models.Category, error)
	GetByIDs(ctx context.Context, q database.Querier, ids []int64) ([]models.Category, error)
	GetByName(ctx context.Context, q database.Querier, name string) (*models.Category, error)
	List(ctx context.Context, q database.Querier, skip, limit int) ([]models.Category, error)
	SearchByName(ctx context.Context, q database.Querier, name string) ([]models.Category, error)
	Update(ctx context.Context, q database.Querier, category *models.Category) error
	Delete(ctx context.Context, q database.Querier, id int64) error
}

// ProductStore es el acceso a datos de productos
type ProductStore interface {
	Create(ctx context.Context, q database.Querier, product *models.Product) error
	GetByID(ctx context.Context, q database.Querier, id int64) (*models.Product, error)
	GetByBarcode(ctx context.Context, q database.Querier, barcode string) (*models.Product, error)
	List(ctx context.Context, q database.Querier, filter models.ProductFilter) ([]models.Product, error)
	Search(ctx context.Context, q database.Querier, search models.ProductSearch) ([]models.Product, error)
	Update(ctx context.Context, q database.Querier, product *models.Product) error
	Delete(ctx context.Context, q database.Querier, id int64) error
}

// ProductCategoryStore es el acceso a la tabla de vínculos
type ProductCategoryStore interface {
	Create(ctx context.Context, q database.Querier, link *models.ProductCategory) error
	ListByProduct(ctx context.Context, q database.Querier, productID int64) ([]models.ProductCategory, error)
	DeleteByProduct(ctx context.Context, q database.Querier, productID int64) error
}

// ObjectStore es el object storage donde viven las imágenes
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, body io.ReadSeeker, size int64, contentType string) (*models.Image, error)
	List(ctx context.Context) ([]models.Image, error)
	Stat(ctx context.Context, objectName string) (*models.Image, error)
	Open(ctx context.Context, objectName string) (io.ReadCloser, *models.Image, error)
	Delete(ctx context.Context, objectName string) error
}

// ImageIndex recuerda qué objeto corresponde a cada ETag
type ImageIndex interface {
	LookupObject(ctx context.Context, etag string) (string, error)
	RememberObject(ctx context.Context, etag, objectName string) error
	ForgetObject(ctx context.Context, etag string) error
}

// EventPublisher publica eventos del catálogo después del commit
type EventPublisher interface {
	Publish(ctx context.Context, name string, data map[string]any) error
}

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, database.ErrDuplicate)
}

// duplicateField deduce el campo a partir del nombre de la restricción UNIQUE
func duplicateField(err error, fallback string) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "barcode"):
		return "barcode"
	case strings.Contains(msg, "name_key"):
		return "name"
	}
	return fallback
}
