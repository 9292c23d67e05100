package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/catalog-service/internal/models"
)

// CreateBrand crea una nueva marca
func (api *API) CreateBrand(c *gin.Context) {
	var req models.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.respondBindingError(c, err)
		return
	}

	brand, err := api.brandService.Create(c.Request.Context(), &req)
	if err != nil {
		api.respondError(c, err, "create brand")
		return
	}

	c.JSON(http.StatusCreated, brand)
}

// ListBrands lista marcas con skip/limit
func (api *API) ListBrands(c *gin.Context) {
	skip, limit, ok := parsePage(c)
	if !ok {
		return
	}

	brands, err := api.brandService.List(c.Request.Context(), skip, limit)
	if err != nil {
		api.respondError(c, err, "list brands")
		return
	}

	c.JSON(http.StatusOK, brands)
}

// GetBrand obtiene una marca por ID
func (api *API) GetBrand(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	brand, err := api.brandService.GetByID(c.Request.Context(), id)
	if err != nil {
		api.respondError(c, err, "get brand")
		return
	}

	c.JSON(http.StatusOK, brand)
}

// UpdateBrand actualiza parcialmente una marca
func (api *API) UpdateBrand(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.respondBindingError(c, err)
		return
	}

	brand, err := api.brandService.Update(c.Request.Context(), id, &req)
	if err != nil {
		api.respondError(c, err, "update brand")
		return
	}

	c.JSON(http.StatusOK, brand)
}

// DeleteBrand elimina una marca
func (api *API) DeleteBrand(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := api.brandService.Delete(c.Request.Context(), id); err != nil {
		api.respondError(c, err, "delete brand")
		return
	}

	c.Status(http.StatusNoContent)
}

// SearchBrands busca marcas por nombre
func (api *API) SearchBrands(c *gin.Context) {
	brands, err := api.brandService.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		api.respondError(c, err, "search brands")
		return
	}

	c.JSON(http.StatusOK, brands)
}
