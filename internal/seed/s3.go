package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config describes where seed files live in an S3-compatible store.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string // default us-east-1
	Endpoint        string // optional; enables a custom endpoint such as MinIO
	AccessKeyID     string // optional; falls back to the default credentials chain
	SecretAccessKey string
	PathStyle       bool

	// HTTPClient overrides the SDK transport. Tests use it.
	HTTPClient *http.Client
}

// S3Source reads seed files from objects under a bucket prefix.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Source builds an S3 client from cfg.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("seed: s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("seed: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &S3Source{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Open fetches the object prefix/name.
func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := path.Join(s.prefix, name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissingObject(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotExist, s.bucket, key)
		}
		return nil, fmt.Errorf("seed: get s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

func (s *S3Source) String() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}

func isMissingObject(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var status interface{ HTTPStatusCode() int }
	return errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound
}
