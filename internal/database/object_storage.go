package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/hypernova-labs/catalog-service/internal/config"
	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ObjectStorage representa el cliente del object storage compatible con S3 (MinIO)
type ObjectStorage struct {
	s3Client *s3.Client
	endpoint string
	bucket   string
	logger   *logrus.Logger
}

// NewObjectStorage crea una nueva instancia del cliente de object storage
func NewObjectStorage(ctx context.Context, cfg *config.StorageConfig, logger *logrus.Logger) (*ObjectStorage, error) {
	endpoint := cfg.Endpoint()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		// MinIO direcciona buckets por path
		o.UsePathStyle = cfg.PathStyle
	})

	return &ObjectStorage{
		s3Client: s3Client,
		endpoint: endpoint,
		bucket:   cfg.Bucket,
		logger:   logger,
	}, nil
}

// Bucket retorna el bucket configurado
func (s *ObjectStorage) Bucket() string {
	return s.bucket
}

// HealthCheck verifica que el bucket sea accesible
func (s *ObjectStorage) HealthCheck(ctx context.Context) error {
	_, err := s.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("error checking object storage connection: %w", err)
	}
	return nil
}

// EnsureBucket crea el bucket si todavía no existe
func (s *ObjectStorage) EnsureBucket(ctx context.Context) error {
	if err := s.HealthCheck(ctx); err == nil {
		s.logger.WithField("bucket", s.bucket).Info("Bucket already exists")
		return nil
	}

	_, err := s.s3Client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil && !hasErrorCode(err, "BucketAlreadyOwnedByYou", "BucketAlreadyExists") {
		return fmt.Errorf("error creating bucket %s: %w", s.bucket, err)
	}

	s.logger.WithField("bucket", s.bucket).Info("Bucket created in object storage")
	return nil
}

// Upload sube un objeto y retorna sus metadatos (incluido el ETag asignado)
func (s *ObjectStorage) Upload(ctx context.Context, objectName string, body io.ReadSeeker, size int64, contentType string) (*models.Image, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectName),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.s3Client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("error uploading object %s: %w", objectName, err)
	}

	image, err := s.Stat(ctx, objectName)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"bucket": s.bucket,
		"object": objectName,
		"etag":   image.ETag,
		"size":   size,
	}).Info("Object uploaded to storage successfully")

	return image, nil
}

// List lista todos los objetos del bucket
func (s *ObjectStorage) List(ctx context.Context) ([]models.Image, error) {
	images := make([]models.Image, 0)

	paginator := s3.NewListObjectsV2Paginator(s.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing objects: %w", err)
		}
		for _, obj := range page.Contents {
			name := aws.ToString(obj.Key)
			images = append(images, models.Image{
				ObjectName:   name,
				ETag:         NormalizeETag(aws.ToString(obj.ETag)),
				Size:         obj.Size,
				LastModified: obj.LastModified,
				URL:          s.objectURL(name),
			})
		}
	}

	return images, nil
}

// Stat obtiene los metadatos de un objeto por nombre
func (s *ObjectStorage) Stat(ctx context.Context, objectName string) (*models.Image, error) {
	head, err := s.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return nil, fmt.Errorf("error reading object %s: %w", objectName, translateStorageError(err))
	}

	return &models.Image{
		ObjectName:   objectName,
		ETag:         NormalizeETag(aws.ToString(head.ETag)),
		Size:         head.ContentLength,
		LastModified: head.LastModified,
		ContentType:  aws.ToString(head.ContentType),
		URL:          s.objectURL(objectName),
	}, nil
}

// Open abre un stream de lectura del objeto; el llamador debe cerrarlo
func (s *ObjectStorage) Open(ctx context.Context, objectName string) (io.ReadCloser, *models.Image, error) {
	result, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error downloading object %s: %w", objectName, translateStorageError(err))
	}

	return result.Body, &models.Image{
		ObjectName:   objectName,
		ETag:         NormalizeETag(aws.ToString(result.ETag)),
		Size:         result.ContentLength,
		LastModified: result.LastModified,
		ContentType:  aws.ToString(result.ContentType),
		URL:          s.objectURL(objectName),
	}, nil
}

// Delete elimina un objeto por nombre
func (s *ObjectStorage) Delete(ctx context.Context, objectName string) error {
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("error deleting object %s: %w", objectName, translateStorageError(err))
	}

	s.logger.WithFields(logrus.Fields{
		"bucket": s.bucket,
		"object": objectName,
	}).Info("Object deleted from storage successfully")

	return nil
}

func (s *ObjectStorage) objectURL(objectName string) *string {
	url := fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, objectName)
	return &url
}

// NormalizeETag quita las comillas con que S3 entrega el ETag
func NormalizeETag(etag string) string {
	return strings.Trim(strings.TrimSpace(etag), `"`)
}

func translateStorageError(err error) error {
	if hasErrorCode(err, "NoSuchKey", "NotFound") {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func hasErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}
