package workflows

import (
	"testing"

	"github.com/hypernova-labs/catalog-service/internal/config"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInngestClient(t *testing.T) {
	logger, _ := logtest.NewNullLogger()

	_, err := NewInngestClient(&config.Config{Inngest: config.InngestConfig{AppID: "catalog-service"}}, logger)
	assert.ErrorContains(t, err, "INNGEST_EVENT_KEY")

	client, err := NewInngestClient(&config.Config{Inngest: config.InngestConfig{AppID: "catalog-service", Dev: true}}, logger)
	require.NoError(t, err)
	assert.NotNil(t, client.client)

	client, err = NewInngestClient(&config.Config{Inngest: config.InngestConfig{AppID: "catalog-service", EventKey: "evt-key"}}, logger)
	require.NoError(t, err)
	assert.NotNil(t, client.client)
}
