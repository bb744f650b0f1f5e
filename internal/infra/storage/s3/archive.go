package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archiver keeps raw webhook payloads for dispute and reconciliation audits.
type Archiver interface {
	Archive(ctx context.Context, provider string, payload []byte) (objectKey string, err error)
}

// Client wraps a MinIO/S3 client over a private audit bucket.
type Client struct {
	bucket         string
	client         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewClient(endpoint string, useSSL bool, accessKey, secretKey, bucket string, logger *slog.Logger) (*Client, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	}
	minioClient, err := minio.New(parseEndpoint(cleanEndpoint), opts)
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	return &Client{
		bucket: bucket,
		client: minioClient,
		logger: logger,
	}, nil
}

// Archive stores the payload under provider/date/uuid and returns the key.
// Objects are write-once; nothing in the reconciliation path ever mutates
// an archived body.
func (c *Client) Archive(ctx context.Context, provider string, payload []byte) (string, error) {
	provider = strings.TrimSpace(strings.ToLower(provider))
	if provider == "" {
		return "", errors.New("s3: provider is required")
	}
	if len(payload) == 0 {
		return "", errors.New("s3: payload is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s/%s.json", provider, time.Now().UTC().Format("2006-01-02"), uuid.NewString())
	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("webhook payload archived", "bucket", c.bucket, "key", key)
	}
	return key, nil
}

// NoopArchiver drops payloads when the archive is not configured; webhook
// processing still proceeds.
type NoopArchiver struct{}

func (NoopArchiver) Archive(_ context.Context, _ string, _ []byte) (string, error) {
	return "", nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.bucketInitOnce.Do(func() {
		exists, err := c.client.BucketExists(ctx, c.bucket)
		if err != nil {
			c.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			c.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return c.bucketInitErr
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ Archiver = (*Client)(nil)
var _ Archiver = NoopArchiver{}
