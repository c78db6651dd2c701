// Package storage writes uploaded images and snapshot documents to an S3 compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const immutableCache = "public, max-age=31536000, immutable"

var ErrUnmanagedURL = errors.New("storage: url is not served by this bucket")

// Objects is the subset of the bucket API the service uses.
type Objects interface {
	PutObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) (string, error)
	DeleteURL(ctx context.Context, raw string) error
	PublicURL(key string) string
}

type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
	StorageClass    string
}

type ObjectStore struct {
	bucket       string
	publicBase   string
	storageClass types.StorageClass
	client       *s3.Client
}

func NewObjectStore(ctx context.Context, cfg Config) (*ObjectStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("object store bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "auto"
	}

	publicBase := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if publicBase == "" {
		publicBase = strings.TrimRight(endpoint, "/") + "/" + bucket
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			strings.TrimSpace(cfg.AccessKeyID),
			strings.TrimSpace(cfg.SecretAccessKey),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		// R2 and MinIO expect path style addressing.
		o.UsePathStyle = true
	})

	return &ObjectStore{
		bucket:       bucket,
		publicBase:   publicBase,
		storageClass: types.StorageClass(strings.ToUpper(strings.TrimSpace(cfg.StorageClass))),
		client:       client,
	}, nil
}

func (s *ObjectStore) PublicURL(key string) string {
	return s.publicBase + "/" + strings.TrimLeft(key, "/")
}

// PutObject uploads body under key and returns its public URL. Empty cacheControl means
// the object is content addressed and cached forever.
func (s *ObjectStore) PutObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}
	if strings.TrimSpace(cacheControl) == "" {
		cacheControl = immutableCache
	}

	input := &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	}
	if s.storageClass != "" {
		input.StorageClass = s.storageClass
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *ObjectStore) DeleteKey(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimLeft(key, "/")),
	})
	return err
}

func (s *ObjectStore) DeleteURL(ctx context.Context, raw string) error {
	key, ok := resolveKey(s.publicBase, s.bucket, raw)
	if !ok {
		return ErrUnmanagedURL
	}
	return s.DeleteKey(ctx, key)
}

// resolveKey maps a public or path style bucket URL back to its object key.
func resolveKey(publicBase, bucket, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, publicBase+"/") {
		return strings.TrimLeft(raw[len(publicBase):], "/"), true
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "", false
	}
	parts := strings.Split(strings.TrimLeft(parsed.Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == bucket {
		return strings.Join(parts[1:], "/"), true
	}
	return "", false
}
