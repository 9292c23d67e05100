package services

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/hypernova-labs/catalog-service/internal/models"
)

const (
	DefaultThumbnailSide    = 256
	DefaultThumbnailQuality = 85
)

// MakeThumbnail reduce la imagen para que entre en w x h manteniendo la proporción
// y la re-codifica como JPEG. Un lado ausente toma DefaultThumbnailSide; nunca agranda.
func MakeThumbnail(r io.Reader, opts models.ThumbnailOptions) ([]byte, error) {
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultThumbnailSide
	}
	if height <= 0 {
		height = DefaultThumbnailSide
	}
	quality := opts.Quality
	if quality <= 0 {
		quality = DefaultThumbnailQuality
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	thumb := imaging.Fit(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("error encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
