package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter arma el router con middleware y rutas, envuelto en la normalización de barras finales
func NewRouter(apiHandler *API, allowedOrigins []string, logger *logrus.Logger) http.Handler {
	useJSONFieldNames()

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Middleware global
	router.Use(Recovery(logger))
	router.Use(RequestLogger(logger))
	router.Use(CORS(allowedOrigins))

	router.GET("/", apiHandler.Root)
	router.GET("/health", apiHandler.Health)

	v1 := router.Group("/api/v1")
	{
		brands := v1.Group("/brands")
		{
			brands.POST("", apiHandler.CreateBrand)
			brands.GET("", apiHandler.ListBrands)
			brands.GET("/search", apiHandler.SearchBrands)
			brands.GET("/:id", apiHandler.GetBrand)
			brands.PUT("/:id", apiHandler.UpdateBrand)
			brands.PATCH("/:id", apiHandler.UpdateBrand)
			brands.DELETE("/:id", apiHandler.DeleteBrand)
		}

		categories := v1.Group("/categories")
		{
			categories.POST("", apiHandler.CreateCategory)
			categories.GET("", apiHandler.ListCategories)
			categories.GET("/search", apiHandler.SearchCategories)
			categories.GET("/:id", apiHandler.GetCategory)
			categories.PUT("/:id", apiHandler.UpdateCategory)
			categories.PATCH("/:id", apiHandler.UpdateCategory)
			categories.DELETE("/:id", apiHandler.DeleteCategory)
		}

		products := v1.Group("/products")
		{
			products.POST("", apiHandler.CreateProduct)
			products.GET("", apiHandler.ListProducts)
			products.GET("/search", apiHandler.SearchProducts)
			products.GET("/report", apiHandler.ProductReport)
			products.GET("/by-brand/:brand_id", apiHandler.ListProductsByBrand)
			products.GET("/by-category/:category_id", apiHandler.ListProductsByCategory)
			products.GET("/:id", apiHandler.GetProduct)
			products.PUT("/:id", apiHandler.UpdateProduct)
			products.PATCH("/:id", apiHandler.UpdateProduct)
			products.DELETE("/:id", apiHandler.DeleteProduct)
		}

		images := v1.Group("/images")
		{
			images.POST("", apiHandler.UploadImage)
			images.GET("", apiHandler.ListImages)
			images.GET("/download/:etag", apiHandler.DownloadImage)
			images.GET("/:etag", apiHandler.GetImage)
			images.DELETE("/:etag", apiHandler.DeleteImage)
		}
	}

	return StripTrailingSlash(router)
}
