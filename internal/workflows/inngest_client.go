package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/hypernova-labs/catalog-service/internal/config"
	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"
)

// InngestClient publica los eventos del catálogo en Inngest
type InngestClient struct {
	client inngestgo.Client
	logger *logrus.Logger
}

// NewInngestClient crea una nueva instancia del cliente
func NewInngestClient(cfg *config.Config, logger *logrus.Logger) (*InngestClient, error) {
	// Verificar que las credenciales estén configuradas
	if cfg.Inngest.EventKey == "" && !cfg.Inngest.Dev {
		return nil, fmt.Errorf("INNGEST_EVENT_KEY not configured")
	}

	dev := cfg.Inngest.Dev
	opts := inngestgo.ClientOpts{
		AppID: cfg.Inngest.AppID,
		Dev:   &dev,
	}
	if cfg.Inngest.EventKey != "" {
		eventKey := cfg.Inngest.EventKey
		opts.EventKey = &eventKey
	}

	client, err := inngestgo.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("error creating Inngest client: %w", err)
	}

	return NewPublisher(client, logger), nil
}

// NewPublisher envuelve un cliente de Inngest ya construido
func NewPublisher(client inngestgo.Client, logger *logrus.Logger) *InngestClient {
	return &InngestClient{
		client: client,
		logger: logger,
	}
}

// Publish envía un evento del catálogo
func (c *InngestClient) Publish(ctx context.Context, name string, data map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	id, err := c.client.Send(ctx, inngestgo.Event{
		Name:      name,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("error sending event %s: %w", name, err)
	}

	c.logger.WithFields(logrus.Fields{
		"event":    name,
		"event_id": id,
	}).Debug("Catalog event published")

	return nil
}
