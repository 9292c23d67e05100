package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hypernova-labs/catalog-service/internal/models"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000

	brandNameMaxLen    = 100
	categoryNameMaxLen = 100
	productNameMaxLen  = 255
	barcodeMaxLen      = 50
)

// validatePage valida los parámetros skip/limit de un listado
func validatePage(skip, limit int) error {
	if skip < 0 {
		return models.ValidationFailed("skip", "must be greater than or equal to 0", "Invalid pagination parameters")
	}
	if limit < 1 || limit > MaxLimit {
		return models.ValidationFailed("limit", fmt.Sprintf("must be between 1 and %d", MaxLimit), "Invalid pagination parameters")
	}
	return nil
}

// validateName exige un nombre no vacío y dentro del largo máximo
func validateName(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return models.ValidationFailed(field, "is required", fmt.Sprintf("Field %s is required", field))
	}
	if utf8.RuneCountInString(value) > maxLen {
		return models.ValidationFailed(field, fmt.Sprintf("must be at most %d characters", maxLen), fmt.Sprintf("Field %s is too long", field))
	}
	return nil
}

// requiredOptional rechaza un null explícito en un campo no nulable
func requiredOptional[T any](field string, opt models.Optional[T]) error {
	if opt.IsNull() {
		return models.ValidationFailed(field, "cannot be null", fmt.Sprintf("Field %s cannot be null", field))
	}
	return nil
}

// searchTerm exige un criterio de búsqueda no vacío
func searchTerm(field, value string) (string, error) {
	term := strings.TrimSpace(value)
	if term == "" {
		return "", models.ValidationFailed(field, "is required", "A search term is required")
	}
	return term, nil
}
