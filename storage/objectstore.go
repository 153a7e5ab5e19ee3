package storage

import (
	"context"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/guileen/gridsource/engine/config"
	"github.com/guileen/gridsource/types"
)

const defaultS3Endpoint = "s3.amazonaws.com"

// S3Loader reads a JSON dataset from an S3-compatible object store
type S3Loader struct {
	cfg    config.S3Config
	bucket string
	key    string
	schema types.Schema
}

func NewS3Loader(cfg config.S3Config, bucket, key string, schema types.Schema) *S3Loader {
	return &S3Loader{cfg: cfg, bucket: bucket, key: key, schema: schema}
}

func (l *S3Loader) Load(ctx context.Context) ([]types.Record, error) {
	client, err := l.client()
	if err != nil {
		return nil, err
	}

	obj, err := client.GetObject(ctx, l.bucket, l.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", l.bucket, l.key, err)
	}
	defer obj.Close()

	records, err := DecodeRecords(obj, l.schema)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", l.bucket, l.key, err)
	}
	return records, nil
}

func (l *S3Loader) client() (*minio.Client, error) {
	endpoint, secure, err := s3Endpoint(l.cfg)
	if err != nil {
		return nil, err
	}

	opts := &minio.Options{Secure: secure}
	if l.cfg.AccessKeyID != "" {
		opts.Creds = credentials.NewStaticV4(l.cfg.AccessKeyID, l.cfg.SecretAccessKey, "")
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return client, nil
}

// s3Endpoint accepts either host[:port] or a URL; an https scheme forces TLS
func s3Endpoint(cfg config.S3Config) (string, bool, error) {
	if cfg.Endpoint == "" {
		return defaultS3Endpoint, true, nil
	}

	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Host == "" {
		return cfg.Endpoint, cfg.UseSSL, nil
	}
	switch u.Scheme {
	case "https":
		return u.Host, true, nil
	case "http":
		return u.Host, false, nil
	default:
		return "", false, fmt.Errorf("unsupported s3 endpoint scheme %q", u.Scheme)
	}
}
