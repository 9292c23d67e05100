package models

import "time"

// Category representa una categoría del catálogo
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateCategoryRequest representa el request para crear una categoría
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}

// UpdateCategoryRequest representa una actualización parcial de categoría
type UpdateCategoryRequest struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
}
