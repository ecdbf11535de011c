package media

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/BruksfildServices01/schedmate/internal/config"
)

// S3Store writes public objects to one bucket.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Store builds a client from static credentials. A custom endpoint
// (MinIO, R2, ...) switches to path-style addressing.
func NewS3Store(cfg config.S3Config) *S3Store {
	opts := s3.Options{
		Region: cfg.Region,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return &S3Store{
		client:    s3.New(opts),
		bucket:    cfg.Bucket,
		publicURL: PublicBaseURL(cfg),
	}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", err
	}
	return s.publicURL + "/" + key, nil
}

// PublicBaseURL is where stored objects can be fetched from: the
// configured CDN base, the custom endpoint, or the AWS bucket host.
func PublicBaseURL(cfg config.S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return "https://" + cfg.Bucket + ".s3." + cfg.Region + ".amazonaws.com"
	}
}
