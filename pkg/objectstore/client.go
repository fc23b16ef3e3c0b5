package objectstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
)

const serviceName = "s3"

// Client uploads photos to an S3-compatible bucket
type Client struct {
	client *minio.Client
	bucket string
	region string
	logger logger.Logger
}

// NewClient connects to the bucket described by cfg
func NewClient(cfg config.S3Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be provided")
	}

	endpoint, secure := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	l := log.WithFields(map[string]interface{}{
		"component": "objectstore",
		"bucket":    cfg.Bucket,
	})
	l.DebugWithFields("S3 client created", map[string]interface{}{
		"endpoint": endpoint,
		"region":   region,
		"secure":   secure,
	})

	return &Client{
		client: mc,
		bucket: cfg.Bucket,
		region: region,
		logger: l,
	}, nil
}

// normalizeEndpoint strips a URL scheme, which also decides TLS when present
func normalizeEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
	default:
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "//"), "/"), useSSL
	}
}

// Name identifies the destination in logs and reports
func (c *Client) Name() string {
	return "s3"
}

// EnsureFolder makes sure the bucket exists. Buckets have no real folders;
// the folder only becomes a key prefix. A failed bucket creation is logged
// and left for the first upload to report.
func (c *Client) EnsureFolder(ctx context.Context, folder string) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errs.New(serviceName, errs.ErrorTypeNetwork, 0, "check bucket %s: %v", c.bucket, err)
	}
	if exists {
		c.logger.DebugWithFields("Bucket exists", map[string]interface{}{"folder": folder})
		return nil
	}

	if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
		c.logger.WithError(err).Warn("Bucket creation failed")
		return nil
	}
	c.logger.Info("Bucket created")
	return nil
}

// Store uploads the file at localPath under the key remotePath
func (c *Client) Store(ctx context.Context, remotePath, localPath string) error {
	info, err := c.client.FPutObject(ctx, c.bucket, strings.TrimPrefix(remotePath, "/"), localPath, minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return toError(err, remotePath)
	}

	c.logger.DebugWithFields("Object stored", map[string]interface{}{
		"key":  info.Key,
		"size": info.Size,
		"etag": info.ETag,
	})
	return nil
}

// toError maps a minio error response onto a typed error
func toError(err error, key string) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == 0 {
		return fmt.Errorf("put %s: %w", key, err)
	}

	apiErr := errs.FromStatus(serviceName, resp.StatusCode)
	if apiErr == nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	if resp.Message != "" {
		apiErr.Message = resp.Code + ": " + resp.Message
	}
	return apiErr
}
