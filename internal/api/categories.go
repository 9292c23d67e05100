package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/catalog-service/internal/models"
)

// CreateCategory crea una nueva categoría
func (api *API) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.respondBindingError(c, err)
		return
	}

	category, err := api.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		api.respondError(c, err, "create category")
		return
	}

	c.JSON(http.StatusCreated, category)
}

// ListCategories lista categorías con skip/limit
func (api *API) ListCategories(c *gin.Context) {
	skip, limit, ok := parsePage(c)
	if !ok {
		return
	}

	categories, err := api.categoryService.List(c.Request.Context(), skip, limit)
	if err != nil {
		api.respondError(c, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategory obtiene una categoría por ID
func (api *API) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	category, err := api.categoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		api.respondError(c, err, "get category")
		return
	}

	c.JSON(http.StatusOK, category)
}

// UpdateCategory actualiza parcialmente una categoría
func (api *API) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.respondBindingError(c, err)
		return
	}

	category, err := api.categoryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		api.respondError(c, err, "update category")
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory elimina una categoría
func (api *API) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := api.categoryService.Delete(c.Request.Context(), id); err != nil {
		api.respondError(c, err, "delete category")
		return
	}

	c.Status(http.StatusNoContent)
}

// SearchCategories busca categorías por nombre
func (api *API) SearchCategories(c *gin.Context) {
	categories, err := api.categoryService.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		api.respondError(c, err, "search categories")
		return
	}

	c.JSON(http.StatusOK, categories)
}
