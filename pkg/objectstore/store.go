// Package objectstore implements C2: size-capped upload and download of
// opaque byte blobs keyed by path, adapted from the teacher's DigitalOcean
// Spaces gateway onto a generic S3-compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pescasolic/pkg/domainerr"
)

const defaultMaxUploadBytes = 25 * 1024 * 1024

// Config holds the environment-driven knobs of §6 (AWS_REGION, S3_BUCKET)
// plus the credentials the SDK needs when not sourced from the ambient
// environment chain.
type Config struct {
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	Endpoint       string // non-empty only for S3-compatible providers under test
	MaxUploadBytes int64
}

// Store is C2's single implementation: upload/download of opaque blobs.
type Store struct {
	client         *s3.Client
	bucket         string
	maxUploadBytes int64
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	opts = append(opts, config.WithRetryMode(aws.RetryModeStandard), config.WithRetryMaxAttempts(5))
	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{URL: cfg.Endpoint, SigningRegion: cfg.Region}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		opts = append(opts, config.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load object store config: %w", err)
	}

	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}

	return &Store{
		client:         s3.NewFromConfig(awsCfg, func(o *s3.Options) { o.UsePathStyle = cfg.Endpoint != "" }),
		bucket:         cfg.Bucket,
		maxUploadBytes: maxBytes,
	}, nil
}

// Upload stores data at key and returns the key unchanged, the way the
// repository-facing caller expects: the key is derived by the caller
// (C5), not generated here. Rejects blobs over the configured maximum
// with an InvalidInput error before issuing any network request.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if int64(len(data)) > s.maxUploadBytes {
		return "", domainerr.New(domainerr.InvalidInput,
			fmt.Sprintf("blob of %d bytes exceeds maximum of %d bytes", len(data), s.maxUploadBytes))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", domainerr.Wrap(domainerr.Upload, "object store upload failed", err)
	}
	return key, nil
}

// Download returns the full bytes stored at key.
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "object store download failed", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "object store read failed", err)
	}
	return data, nil
}
