package posterapi

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/keyxmakerx/posterdesk/internal/config"
)

// PosterStore persists rendered posters and returns their public URL.
type PosterStore interface {
	Put(ctx context.Context, key string, png []byte) (url string, err error)
}

// NewPosterKey returns a unique object key such as
// "posters/2026/10/17/poster-<uuid>.png".
func NewPosterKey(now time.Time) string {
	return fmt.Sprintf("posters/%04d/%02d/%02d/poster-%s.png",
		now.Year(), now.Month(), now.Day(), uuid.New())
}

// NewPosterStore builds the store selected by cfg.Backend.
func NewPosterStore(ctx context.Context, cfg config.StorageConfig) (PosterStore, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	case "local", "":
		return NewLocalStore(cfg.MediaPath, cfg.MediaBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown poster storage backend %q", cfg.Backend)
	}
}

// --- Local disk ---

// LocalStore writes posters under a directory served as static files.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates a store rooted at root whose files are reachable
// at baseURL.
func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root is the directory posters are written to.
func (s *LocalStore) Root() string {
	return s.root
}

// Put writes the file and returns baseURL/key.
func (s *LocalStore) Put(_ context.Context, key string, png []byte) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("creating poster directory: %w", err)
	}
	if err := os.WriteFile(full, png, 0644); err != nil {
		return "", fmt.Errorf("writing poster file: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// --- S3 ---

// s3PutAPI is the part of *s3.Client the store uses.
type s3PutAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads posters as public-read objects.
type S3Store struct {
	client   s3PutAPI
	bucket   string
	endpoint string
}

// NewS3Store creates an S3 store. Static keys and a custom endpoint (MinIO,
// LocalStack) are optional; without them the default AWS credential chain
// and endpoint resolution apply.
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket, endpoint: cfg.Endpoint}, nil
}

// Put uploads the poster and returns its permanent public URL.
func (s *S3Store) Put(ctx context.Context, key string, png []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(png),
		ContentType: aws.String("image/png"),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("uploading poster to s3: %w", err)
	}
	return s.objectURL(key), nil
}

// objectURL is virtual-hosted on AWS and path-style on a custom endpoint.
func (s *S3Store) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
