package models

import "time"

// Brand representa una marca del catálogo
type Brand struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateBrandRequest representa el request para crear una marca
type CreateBrandRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// UpdateBrandRequest representa una actualización parcial de marca
type UpdateBrandRequest struct {
	Name Optional[string] `json:"name"`
}
