package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeasureType representa la unidad de medida de un producto
type MeasureType string

const (
	MeasureLiter      MeasureType = "l"
	MeasureMilliliter MeasureType = "ml"
	MeasureKilogram   MeasureType = "kg"
	MeasureGram       MeasureType = "g"
	MeasureUnit       MeasureType = "un"
)

// MeasureTypes lista las unidades válidas
var MeasureTypes = []MeasureType{MeasureLiter, MeasureMilliliter, MeasureKilogram, MeasureGram, MeasureUnit}

// Valid indica si la unidad es una de las soportadas
func (m MeasureType) Valid() bool {
	for _, v := range MeasureTypes {
		if m == v {
			return true
		}
	}
	return false
}

// Product representa un producto del catálogo
type Product struct {
	ID           int64            `json:"id" db:"id"`
	Barcode      *string          `json:"barcode" db:"barcode"`
	Name         string           `json:"name" db:"name"`
	Description  *string          `json:"description" db:"description"`
	BrandID      *int64           `json:"brand_id" db:"brand_id"`
	MeasureType  *MeasureType     `json:"measure_type" db:"measure_type"`
	MeasureValue *decimal.Decimal `json:"measure_value" db:"measure_value"`
	Qtt          *int             `json:"qtt" db:"qtt"`
	Status       bool             `json:"status" db:"status"`
	Images       *string          `json:"images" db:"images"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// ProductCategory representa el vínculo N:N entre producto y categoría
type ProductCategory struct {
	ID         int64     `json:"id" db:"id"`
	ProductID  int64     `json:"product_id" db:"product_id"`
	CategoryID int64     `json:"category_id" db:"category_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ProductRead es la vista desnormalizada de un producto con su marca y categorías
type ProductRead struct {
	Product
	Brand      *Brand     `json:"brand"`
	Categories []Category `json:"categories"`
}

// CreateProductRequest representa el request para crear un producto
type CreateProductRequest struct {
	Barcode      *string          `json:"barcode" binding:"omitempty,max=50"`
	Name         string           `json:"name" binding:"required,max=255"`
	Description  *string          `json:"description"`
	BrandID      *int64           `json:"brand_id"`
	MeasureType  *MeasureType     `json:"measure_type" binding:"omitempty,oneof=l ml kg g un"`
	MeasureValue *decimal.Decimal `json:"measure_value"`
	Qtt          *int             `json:"qtt"`
	Status       *bool            `json:"status"`
	Images       *string          `json:"images"`
	CategoryIDs  []int64          `json:"category_ids"`
}

// UpdateProductRequest representa una actualización parcial de producto.
// CategoryIDs presente (aunque vacío) reemplaza el conjunto de categorías.
type UpdateProductRequest struct {
	Barcode      Optional[string]          `json:"barcode"`
	Name         Optional[string]          `json:"name"`
	Description  Optional[string]          `json:"description"`
	BrandID      Optional[int64]           `json:"brand_id"`
	MeasureType  Optional[MeasureType]     `json:"measure_type"`
	MeasureValue Optional[decimal.Decimal] `json:"measure_value"`
	Qtt          Optional[int]             `json:"qtt"`
	Status       Optional[bool]            `json:"status"`
	Images       Optional[string]          `json:"images"`
	CategoryIDs  Optional[[]int64]         `json:"category_ids"`
}

// ProductFilter agrupa los filtros combinables del listado de productos
type ProductFilter struct {
	Skip        int
	Limit       int
	Status      *bool
	BrandID     *int64
	CategoryID  *int64
	MeasureType *MeasureType
}

// ProductSearch representa los criterios de búsqueda de productos
type ProductSearch struct {
	Name    string
	Barcode string
}
