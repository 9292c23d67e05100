package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/hypernova-labs/catalog-service/internal/services"
	"github.com/sirupsen/logrus"
)

const (
	serviceName    = "Inventory Management API"
	serviceVersion = "1.0.0"
)

// HealthChecker es cualquier dependencia que sabe reportar si está accesible
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// API maneja todos los endpoints de la API
type API struct {
	brandService    *services.BrandService
	categoryService *services.CategoryService
	productService  *services.ProductService
	imageService    *services.ImageService
	catalogReport   *services.CatalogReport
	database        HealthChecker
	dependencies    map[string]HealthChecker
	logger          *logrus.Logger
}

// Option configura dependencias opcionales de la API
type Option func(*API)

// WithImages habilita los endpoints de imágenes
func WithImages(imageService *services.ImageService) Option {
	return func(a *API) { a.imageService = imageService }
}

// WithDependency agrega una dependencia opcional al reporte de /health
func WithDependency(name string, checker HealthChecker) Option {
	return func(a *API) { a.dependencies[name] = checker }
}

// NewAPI crea una nueva instancia de la API
func NewAPI(
	brandService *services.BrandService,
	categoryService *services.CategoryService,
	productService *services.ProductService,
	catalogReport *services.CatalogReport,
	database HealthChecker,
	logger *logrus.Logger,
	opts ...Option,
) *API {
	a := &API{
		brandService:    brandService,
		categoryService: categoryService,
		productService:  productService,
		catalogReport:   catalogReport,
		database:        database,
		dependencies:    make(map[string]HealthChecker),
		logger:          logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// respondError traduce el error de un servicio a la respuesta estandarizada.
// Lo que no es un APIError se registra y se responde como error interno genérico.
func (api *API) respondError(c *gin.Context, err error, action string) {
	if apiErr, ok := models.AsAPIError(err); ok {
		c.JSON(apiErr.HTTPStatus(), apiErr.ErrorResponse)
		return
	}

	api.logger.WithFields(logrus.Fields{
		"action": action,
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"error":  err.Error(),
	}).Error("Unhandled error")
	c.JSON(http.StatusInternalServerError, models.NewInternalError("Internal server error"))
}

// respondBindingError responde 400 con un detalle por cada campo inválido del body
func (api *API) respondBindingError(c *gin.Context, err error) {
	api.logger.WithError(err).Debug("Error binding request body")

	var details []models.ErrorDetail
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details = formatValidationErrors(validationErrs)
	} else {
		details = []models.ErrorDetail{{Field: "body", Issue: err.Error()}}
	}

	c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", details))
}

// parseID lee un parámetro de ruta entero positivo
func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid ID", []models.ErrorDetail{
			{Field: param, Issue: "Must be a positive integer"},
		}))
		return 0, false
	}
	return id, true
}

// parsePage lee skip/limit con sus valores por defecto
func parsePage(c *gin.Context) (skip, limit int, ok bool) {
	skip, ok = queryInt(c, "skip", 0)
	if !ok {
		return 0, 0, false
	}
	limit, ok = queryInt(c, "limit", services.DefaultLimit)
	if !ok {
		return 0, 0, false
	}
	return skip, limit, true
}

func queryInt(c *gin.Context, name string, defaultValue int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return defaultValue, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid query parameter", []models.ErrorDetail{
			{Field: name, Issue: "Must be an integer"},
		}))
		return 0, false
	}
	return value, true
}

func queryInt64(c *gin.Context, name string) (*int64, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid query parameter", []models.ErrorDetail{
			{Field: name, Issue: "Must be an integer"},
		}))
		return nil, false
	}
	return &value, true
}

func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid query parameter", []models.ErrorDetail{
			{Field: name, Issue: "Must be a boolean"},
		}))
		return nil, false
	}
	return &value, true
}
