package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/hypernova-labs/catalog-service/internal/services"
)

// UploadImage sube el archivo del campo multipart "file"
func (api *API) UploadImage(c *gin.Context) {
	if !api.imagesAvailable(c) {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("File required", []models.ErrorDetail{
			{Field: "file", Issue: "Must be a multipart file field"},
		}))
		return
	}

	file, err := header.Open()
	if err != nil {
		api.respondError(c, fmt.Errorf("error opening uploaded file: %w", err), "upload image")
		return
	}
	defer file.Close()

	image, err := api.imageService.Upload(c.Request.Context(), header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		api.respondError(c, err, "upload image")
		return
	}

	c.JSON(http.StatusCreated, image)
}

// ListImages lista todas las imágenes del bucket
func (api *API) ListImages(c *gin.Context) {
	if !api.imagesAvailable(c) {
		return
	}

	images, err := api.imageService.List(c.Request.Context())
	if err != nil {
		api.respondError(c, err, "list images")
		return
	}

	c.JSON(http.StatusOK, images)
}

// GetImage obtiene los metadatos de una imagen por ETag
func (api *API) GetImage(c *gin.Context) {
	if !api.imagesAvailable(c) {
		return
	}

	image, err := api.imageService.Get(c.Request.Context(), c.Param("etag"))
	if err != nil {
		api.respondError(c, err, "get image")
		return
	}

	c.JSON(http.StatusOK, image)
}

// DownloadImage descarga la imagen original o una miniatura si se pasan w y/o h
func (api *API) DownloadImage(c *gin.Context) {
	if !api.imagesAvailable(c) {
		return
	}

	opts := models.ThumbnailOptions{Quality: services.DefaultThumbnailQuality}
	var ok bool
	if opts.Width, ok = queryInt(c, "w", 0); !ok {
		return
	}
	if opts.Height, ok = queryInt(c, "h", 0); !ok {
		return
	}
	if opts.Quality, ok = queryInt(c, "quality", services.DefaultThumbnailQuality); !ok {
		return
	}

	download, err := api.imageService.Download(c.Request.Context(), c.Param("etag"), opts)
	if err != nil {
		api.respondError(c, err, "download image")
		return
	}
	defer download.Body.Close()

	disposition := "attachment"
	if download.Inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, download.Filename))
	if download.ContentLength > 0 {
		c.Header("Content-Length", strconv.FormatInt(download.ContentLength, 10))
	}
	c.Header("Content-Type", download.ContentType)
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, download.Body); err != nil {
		api.logger.WithError(err).Warn("Image stream interrupted")
	}
}

// DeleteImage elimina una imagen por ETag
func (api *API) DeleteImage(c *gin.Context) {
	if !api.imagesAvailable(c) {
		return
	}

	if err := api.imageService.Delete(c.Request.Context(), c.Param("etag")); err != nil {
		api.respondError(c, err, "delete image")
		return
	}

	c.Status(http.StatusNoContent)
}

func (api *API) imagesAvailable(c *gin.Context) bool {
	if api.imageService == nil {
		c.JSON(http.StatusServiceUnavailable, models.NewInternalError("Image storage is not configured"))
		return false
	}
	return true
}
