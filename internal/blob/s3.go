package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the S3 connection settings. Empty credentials fall back to
// the default AWS chain.
type S3Config struct {
	Region       string
	Bucket       string
	Endpoint     string // optional, e.g. MinIO
	UsePathStyle bool
	AccessKey    string
	SecretKey    string

	// HTTPClient replaces the SDK transport when set.
	HTTPClient *http.Client
}

// S3 puts objects into one bucket.
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 builds an S3 store from cfg.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &S3{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3) Location() string { return "s3://" + s.bucket }

func (s *S3) Put(ctx context.Context, key string, r io.Reader) error {
	k, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
		Body:   r,
	})
	return err
}

// Open returns the store for a parsed target. s3 targets take connection
// settings from cfg; its Bucket field is replaced by the target's.
func Open(ctx context.Context, t Target, cfg S3Config) (Store, error) {
	switch t.Scheme {
	case "s3":
		cfg.Bucket = t.Bucket
		return NewS3(ctx, cfg)
	case "file":
		return NewDir(t.Prefix)
	}
	return nil, fmt.Errorf("unsupported upload scheme %q", t.Scheme)
}
