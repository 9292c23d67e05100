package services

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Nombres de los eventos del catálogo
const (
	EventBrandCreated    = "catalog/brand.created"
	EventBrandUpdated    = "catalog/brand.updated"
	EventBrandDeleted    = "catalog/brand.deleted"
	EventCategoryCreated = "catalog/category.created"
	EventCategoryUpdated = "catalog/category.updated"
	EventCategoryDeleted = "catalog/category.deleted"
	EventProductCreated  = "catalog/product.created"
	EventProductUpdated  = "catalog/product.updated"
	EventProductDeleted  = "catalog/product.deleted"
	EventImageUploaded   = "catalog/image.uploaded"
	EventImageDeleted    = "catalog/image.deleted"
)

// notifier publica eventos sin afectar el resultado de la operación
type notifier struct {
	publisher EventPublisher
	logger    *logrus.Logger
}

func (n notifier) notify(ctx context.Context, name string, data map[string]any) {
	if n.publisher == nil {
		return
	}
	if err := n.publisher.Publish(ctx, name, data); err != nil {
		n.logger.WithFields(logrus.Fields{
			"event": name,
			"error": err.Error(),
		}).Warn("Failed to publish catalog event")
	}
}
