// Package s3 keeps synthesized clips in Amazon S3 or an S3-compatible
// service such as MinIO.
package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderS3, func(cfg storage.Config, log *logger.Logger) (storage.Storage, error) {
		s, err := NewStorage(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		log.Debug("s3 bucket ready", logger.Fields("bucket", cfg.Bucket, "public_base", s.publicBase))
		return s, nil
	})
}

// Storage writes objects under one bucket.
type Storage struct {
	client     *awss3.Client
	bucket     string
	publicBase string
	timeout    time.Duration
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage builds the client. Static keys win over the default AWS
// credential chain. A custom endpoint switches to path-style addressing.
func NewStorage(ctx context.Context, cfg storage.Config) (*Storage, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		static := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(static))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: aws config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle || endpoint != ""
		if endpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(endpoint)
		// MinIO and friends reject the newer default checksums.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	publicBase := endpoint
	if publicBase == "" {
		publicBase = "https://s3." + cfg.Region + ".amazonaws.com"
	}
	return &Storage{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: publicBase + "/" + cfg.Bucket,
		timeout:    cfg.Timeout,
	}, nil
}

func (s *Storage) Upload(ctx context.Context, path string, reader io.Reader, contentType string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	in := &awss3.PutObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(path), Body: reader}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("storage: s3 put %s: %w", path, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, path string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	in := &awss3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(path)}
	if _, err := s.client.DeleteObject(ctx, in); err != nil {
		return fmt.Errorf("storage: s3 delete %s: %w", path, err)
	}
	return nil
}

// URL is the path-style public address of the object. The bucket policy
// decides whether it is readable.
func (s *Storage) URL(_ context.Context, path string) (string, error) {
	return s.publicBase + "/" + strings.TrimLeft(path, "/"), nil
}

func (s *Storage) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
