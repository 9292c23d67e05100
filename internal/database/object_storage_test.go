package database

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/hypernova-labs/catalog-service/internal/config"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNormalizeETag(t *testing.T) {
	assert.Equal(t, "abc123", NormalizeETag(`"abc123"`))
	assert.Equal(t, "abc123", NormalizeETag(` "abc123" `))
	assert.Equal(t, "abc123", NormalizeETag("abc123"))
	assert.Empty(t, NormalizeETag(`""`))
}

func TestTranslateStorageError(t *testing.T) {
	missing := fmt.Errorf("operation error S3: GetObject: %w", &smithy.GenericAPIError{Code: "NoSuchKey", Message: "gone"})
	assert.ErrorIs(t, translateStorageError(missing), ErrNotFound)

	head := &smithy.GenericAPIError{Code: "NotFound"}
	assert.ErrorIs(t, translateStorageError(head), ErrNotFound)

	denied := &smithy.GenericAPIError{Code: "AccessDenied"}
	assert.NotErrorIs(t, translateStorageError(denied), ErrNotFound)

	plain := errors.New("dial tcp: connection refused")
	assert.Equal(t, plain, translateStorageError(plain))
}

func TestObjectStorage_MinIO(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping object storage integration tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			Cmd:          []string{"server", "/data"},
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate minio container: %v", err)
		}
	})

	host, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	logger, _ := logtest.NewNullLogger()
	storage, err := NewObjectStorage(ctx, &config.StorageConfig{
		Host:      host,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "catalog-test",
		Region:    "us-east-1",
		PathStyle: true,
	}, logger)
	require.NoError(t, err)

	assert.Error(t, storage.HealthCheck(ctx), "bucket does not exist yet")
	require.NoError(t, storage.EnsureBucket(ctx))
	require.NoError(t, storage.EnsureBucket(ctx))
	require.NoError(t, storage.HealthCheck(ctx))

	content := []byte("fake image payload")
	image, err := storage.Upload(ctx, "a.jpg", bytes.NewReader(content), int64(len(content)), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", image.ObjectName)
	assert.NotEmpty(t, image.ETag)
	assert.NotContains(t, image.ETag, `"`)
	require.NotNil(t, image.URL)
	assert.Contains(t, *image.URL, "/catalog-test/a.jpg")

	images, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, image.ETag, images[0].ETag)

	body, meta, err := storage.Open(ctx, "a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, body.Close())
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, "image/jpeg", meta.ContentType)

	require.NoError(t, storage.Delete(ctx, "a.jpg"))
	_, err = storage.Stat(ctx, "a.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = storage.Open(ctx, "a.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}
