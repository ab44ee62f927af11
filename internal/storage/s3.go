package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"pulse/internal/config"
	"pulse/internal/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of the S3 client the store calls.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store writes objects to an S3 compatible bucket (AWS, R2, MinIO).
type S3Store struct {
	urlMapper
	client s3API
	bucket string
}

// NewS3Store loads AWS configuration, preferring static credentials from
// config when both keys are present.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, cfg.S3Bucket, cfg.StoragePublicURL), nil
}

func newS3Store(client s3API, bucket, publicURL string) *S3Store {
	return &S3Store{urlMapper: newURLMapper(publicURL), client: client, bucket: bucket}
}

func (s *S3Store) Upload(ctx context.Context, key string, body []byte, contentType string) (url string, err error) {
	defer func() {
		observability.StorageOperations.WithLabelValues("s3", "upload", observability.ResultLabel(err)).Inc()
	}()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *S3Store) Delete(ctx context.Context, keys ...string) (err error) {
	defer func() {
		observability.StorageOperations.WithLabelValues("s3", "delete", observability.ResultLabel(err)).Inc()
	}()

	var errs []error
	for _, key := range keys {
		if _, derr := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}); derr != nil {
			errs = append(errs, fmt.Errorf("delete object %s: %w", key, derr))
		}
	}
	return errors.Join(errs...)
}
