package models

import "time"

// Image representa los metadatos de una imagen en el object storage
type Image struct {
	ObjectName   string     `json:"object_name"`
	ETag         string     `json:"etag"`
	Size         *int64     `json:"size,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	ContentType  string     `json:"content_type,omitempty"`
	URL          *string    `json:"url,omitempty"`
}

// ThumbnailOptions representa los parámetros de redimensionamiento en la descarga
type ThumbnailOptions struct {
	Width   int
	Height  int
	Quality int
}

// Requested indica si se pidió algún redimensionamiento
func (o ThumbnailOptions) Requested() bool {
	return o.Width > 0 || o.Height > 0
}
