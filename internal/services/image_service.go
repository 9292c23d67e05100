package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hypernova-labs/catalog-service/internal/database"
	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ImageDownload es el contenido listo para enviar al cliente; el llamador cierra Body
type ImageDownload struct {
	Body          io.ReadCloser
	Filename      string
	ContentType   string
	ContentLength int64
	Inline        bool
}

// ImageService maneja las imágenes guardadas en el object storage, direccionadas por ETag
type ImageService struct {
	store  ObjectStore
	index  ImageIndex
	events notifier
	logger *logrus.Logger
}

// NewImageService crea una nueva instancia del servicio. index puede ser nil.
func NewImageService(store ObjectStore, index ImageIndex, publisher EventPublisher, logger *logrus.Logger) *ImageService {
	return &ImageService{
		store:  store,
		index:  index,
		events: notifier{publisher: publisher, logger: logger},
		logger: logger,
	}
}

// Upload guarda el archivo con un nombre único conservando la extensión original
func (s *ImageService) Upload(ctx context.Context, filename string, body io.ReadSeeker, size int64, contentType string) (*models.Image, error) {
	objectName := uuid.New().String() + filepath.Ext(filename)

	image, err := s.store.Upload(ctx, objectName, body, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("error uploading image: %w", err)
	}
	s.remember(ctx, image.ETag, image.ObjectName)

	s.logger.WithFields(logrus.Fields{
		"object": image.ObjectName,
		"etag":   image.ETag,
		"source": filename,
	}).Info("Image uploaded successfully")
	s.events.notify(ctx, EventImageUploaded, map[string]any{"object_name": image.ObjectName, "etag": image.ETag})

	return image, nil
}

// List lista todas las imágenes del bucket
func (s *ImageService) List(ctx context.Context) ([]models.Image, error) {
	images, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing images: %w", err)
	}
	return images, nil
}

// Get obtiene los metadatos de la imagen con el ETag dado
func (s *ImageService) Get(ctx context.Context, etag string) (*models.Image, error) {
	return s.resolve(ctx, etag)
}

// Download abre la imagen original o, si se pidió tamaño, una miniatura JPEG
func (s *ImageService) Download(ctx context.Context, etag string, opts models.ThumbnailOptions) (*ImageDownload, error) {
	if err := validateThumbnail(opts); err != nil {
		return nil, err
	}

	image, err := s.resolve(ctx, etag)
	if err != nil {
		return nil, err
	}

	body, meta, err := s.store.Open(ctx, image.ObjectName)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NotFound("Image not found")
		}
		return nil, fmt.Errorf("error downloading image: %w", err)
	}

	if !opts.Requested() {
		download := &ImageDownload{
			Body:        body,
			Filename:    image.ObjectName,
			ContentType: meta.ContentType,
		}
		if download.ContentType == "" {
			download.ContentType = "image/jpeg"
		}
		if meta.Size != nil {
			download.ContentLength = *meta.Size
		}
		return download, nil
	}

	defer body.Close()
	thumb, err := MakeThumbnail(body, opts)
	if err != nil {
		return nil, fmt.Errorf("error generating thumbnail for %s: %w", image.ObjectName, err)
	}

	return &ImageDownload{
		Body:          io.NopCloser(bytes.NewReader(thumb)),
		Filename:      "thumb_" + image.ObjectName,
		ContentType:   "image/jpeg",
		ContentLength: int64(len(thumb)),
		Inline:        true,
	}, nil
}

// Delete elimina la imagen con el ETag dado
func (s *ImageService) Delete(ctx context.Context, etag string) error {
	image, err := s.resolve(ctx, etag)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, image.ObjectName); err != nil {
		if isNotFound(err) {
			return models.NotFound("Image not found")
		}
		return fmt.Errorf("error deleting image: %w", err)
	}
	s.forget(ctx, image.ETag)

	s.logger.WithFields(logrus.Fields{
		"object": image.ObjectName,
		"etag":   image.ETag,
	}).Info("Image deleted successfully")
	s.events.notify(ctx, EventImageDeleted, map[string]any{"object_name": image.ObjectName, "etag": image.ETag})

	return nil
}

// resolve traduce un ETag en el objeto correspondiente.
// Primero consulta el índice y confirma contra el storage; si falla, recorre el bucket.
func (s *ImageService) resolve(ctx context.Context, etag string) (*models.Image, error) {
	etag = database.NormalizeETag(etag)
	if etag == "" {
		return nil, models.NotFound("Image not found")
	}

	if s.index != nil {
		objectName, err := s.index.LookupObject(ctx, etag)
		switch {
		case err == nil:
			image, statErr := s.store.Stat(ctx, objectName)
			if statErr == nil && image.ETag == etag {
				return image, nil
			}
			s.forget(ctx, etag)
		case !isNotFound(err):
			s.logger.WithField("error", err.Error()).Warn("Image index lookup failed, falling back to bucket scan")
		}
	}

	images, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing images: %w", err)
	}
	for i := range images {
		if images[i].ETag == etag {
			s.remember(ctx, etag, images[i].ObjectName)
			return &images[i], nil
		}
	}

	return nil, models.NotFound("Image not found")
}

func (s *ImageService) remember(ctx context.Context, etag, objectName string) {
	if s.index == nil {
		return
	}
	if err := s.index.RememberObject(ctx, etag, objectName); err != nil {
		s.logger.WithField("error", err.Error()).Warn("Failed to update image index")
	}
}

func (s *ImageService) forget(ctx context.Context, etag string) {
	if s.index == nil {
		return
	}
	if err := s.index.ForgetObject(ctx, etag); err != nil {
		s.logger.WithField("error", err.Error()).Warn("Failed to update image index")
	}
}

func validateThumbnail(opts models.ThumbnailOptions) error {
	if opts.Width < 0 {
		return models.ValidationFailed("w", "must be a positive integer", "Invalid thumbnail width")
	}
	if opts.Height < 0 {
		return models.ValidationFailed("h", "must be a positive integer", "Invalid thumbnail height")
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return models.ValidationFailed("quality", "must be between 1 and 100", "Invalid thumbnail quality")
	}
	return nil
}
