package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/laxmielectronics/site-api/config"
	"github.com/laxmielectronics/site-api/pkg/logger"
	"github.com/laxmielectronics/site-api/pkg/metrics"
)

// S3API is the subset of the S3 client the store uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

const s3KeyPrefix = "uploads/"

// S3Store stages uploads in an S3-compatible bucket
type S3Store struct {
	client S3API
	bucket string
}

// NewS3Store creates a store for any S3-compatible endpoint
func NewS3Store(cfg config.AttachmentsConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required for s3 attachment storage")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	logger.Info("S3 attachment store initialized",
		zap.String("bucket", cfg.Bucket),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", region),
	)

	return NewS3StoreWithClient(s3.New(opts), cfg.Bucket), nil
}

// NewS3StoreWithClient wraps an existing client
func NewS3StoreWithClient(client S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// Name returns the backend name
func (s *S3Store) Name() string {
	return "s3"
}

// Put uploads r under a fresh key
func (s *S3Store) Put(ctx context.Context, filename string, r io.Reader, size int64) (*Object, error) {
	start := time.Now()
	filename = cleanFilename(filename)
	key := s3KeyPrefix + newKey(filename)
	contentType := ContentType(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	s.record(ctx, "put", key, start, err, zap.Int64("size_bytes", size))
	if err != nil {
		return nil, fmt.Errorf("failed to upload attachment: %w", err)
	}

	return &Object{Key: key, Filename: filename, ContentType: contentType, Size: size}, nil
}

// Open streams the object body
func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	s.record(ctx, "open", key, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachment: %w", err)
	}
	return out.Body, nil
}

// Delete removes the object
func (s *S3Store) Delete(ctx context.Context, key string) error {
	start := time.Now()
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	s.record(ctx, "delete", key, start, err)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

func (s *S3Store) record(ctx context.Context, operation, key string, start time.Time, err error, fields ...zap.Field) {
	status := metrics.StatusLabel(err)
	metrics.AttachmentOperations.WithLabelValues(s.Name(), operation, status).Inc()
	fields = append(fields, zap.String("key", key))
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.LogAPICall(ctx, "s3_storage", operation, status, metrics.MeasureDuration(start), fields...)
}
