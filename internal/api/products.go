package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/catalog-service/internal/models"
)

// CreateProduct crea un nuevo producto
func (api *API) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.respondBindingError(c, err)
		return
	}

	product, err := api.productService.Create(c.Request.Context(), &req)
	if err != nil {
		api.respondError(c, err, "create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// ListProducts lista productos con filtros combinables
func (api *API) ListProducts(c *gin.Context) {
	filter, ok := parseProductFilter(c)
	if !ok {
		return
	}

	products, err := api.productService.List(c.Request.Context(), filter)
	if err != nil {
		api.respondError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct obtiene un producto con su marca y categorías
func (api *API) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := api.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		api.respondError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct actualiza parcialmente un producto
func (api *API) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.respondBindingError(c, err)
		return
	}

	product, err := api.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		api.respondError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct elimina un producto
func (api *API) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := api.productService.Delete(c.Request.Context(), id); err != nil {
		api.respondError(c, err, "delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// SearchProducts busca productos por nombre y/o código de barras
func (api *API) SearchProducts(c *gin.Context) {
	search := models.ProductSearch{
		Name:    c.Query("name"),
		Barcode: c.Query("barcode"),
	}

	products, err := api.productService.Search(c.Request.Context(), search)
	if err != nil {
		api.respondError(c, err, "search products")
		return
	}

	c.JSON(http.StatusOK, products)
}

// ListProductsByBrand lista los productos de una marca
func (api *API) ListProductsByBrand(c *gin.Context) {
	brandID, ok := parseID(c, "brand_id")
	if !ok {
		return
	}

	products, err := api.productService.ListByBrand(c.Request.Context(), brandID)
	if err != nil {
		api.respondError(c, err, "list products by brand")
		return
	}

	c.JSON(http.StatusOK, products)
}

// ListProductsByCategory lista los productos de una categoría
func (api *API) ListProductsByCategory(c *gin.Context) {
	categoryID, ok := parseID(c, "category_id")
	if !ok {
		return
	}

	products, err := api.productService.ListByCategory(c.Request.Context(), categoryID)
	if err != nil {
		api.respondError(c, err, "list products by category")
		return
	}

	c.JSON(http.StatusOK, products)
}

// ProductReport descarga el listado filtrado de productos en PDF
func (api *API) ProductReport(c *gin.Context) {
	filter, ok := parseProductFilter(c)
	if !ok {
		return
	}

	data, err := api.catalogReport.Generate(c.Request.Context(), filter)
	if err != nil {
		api.respondError(c, err, "generate product report")
		return
	}

	fileName := fmt.Sprintf("catalog_%s.pdf", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/pdf", data)
}

func parseProductFilter(c *gin.Context) (models.ProductFilter, bool) {
	var filter models.ProductFilter

	skip, limit, ok := parsePage(c)
	if !ok {
		return filter, false
	}
	filter.Skip, filter.Limit = skip, limit

	if filter.Status, ok = queryBool(c, "status"); !ok {
		return filter, false
	}
	if filter.BrandID, ok = queryInt64(c, "brand_id"); !ok {
		return filter, false
	}
	if filter.CategoryID, ok = queryInt64(c, "category_id"); !ok {
		return filter, false
	}
	if raw := c.Query("measure_type"); raw != "" {
		measure := models.MeasureType(raw)
		filter.MeasureType = &measure
	}

	return filter, true
}
