// Package storage integrates the service with S3-compatible object storage:
// locating or provisioning the bucket, streaming uploads under generated
// keys, issuing time-bounded signed URLs, and idempotent deletion.
package storage

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds the credential material and bucket identity supplied once at
// process configuration time.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string // preferred region hint; may be empty
	Bucket          string
	Endpoint        string // override for S3-compatible stores; empty for AWS
	PathStyle       bool
}

// Client is the region-bound storage handle. It is built once during
// initialization, never mutated afterwards, and shared read-only by all
// concurrent operations.
type Client struct {
	api       *s3.Client
	uploader  uploadManager
	presigner presignAPI
	deleter   deleteAPI
	bucket    string
	region    string
	keyPrefix string
}

// Bucket returns the bucket this handle is bound to.
func (c *Client) Bucket() string { return c.bucket }

// Region returns the region this handle is bound to.
func (c *Client) Region() string { return c.region }

var (
	clientMu sync.Mutex
	client   *Client
)

// Initialize resolves the bucket's region, provisions the bucket, and
// installs the process-wide client handle. It is idempotent: once a handle
// exists, subsequent calls return it unchanged. When provisioning fails the
// handle is still built (against the fallback region if necessary) so that
// degraded operation remains possible, and a *ProvisioningError is returned
// alongside it.
func Initialize(ctx context.Context, cfg Config) (*Client, error) {
	if c := installed(); c != nil {
		return c, nil
	}

	region := NewRegionResolver(cfg).Resolve(ctx, cfg.Bucket)

	api, err := newS3Client(ctx, cfg, region)
	if err != nil {
		return nil, fmt.Errorf("build s3 client for %s: %w", region, err)
	}

	var provErr error
	if !NewBucketProvisioner(api).Ensure(ctx, cfg.Bucket, region) {
		provErr = &ProvisioningError{Bucket: cfg.Bucket, Region: region}
		if region != FallbackRegion {
			region = FallbackRegion
			fallbackAPI, fbErr := newS3Client(ctx, cfg, region)
			if fbErr != nil {
				return nil, fmt.Errorf("build fallback s3 client: %w", fbErr)
			}
			api = fallbackAPI
			// Best effort only: a failure here is logged but does not stop
			// handle construction.
			if !NewBucketProvisioner(api).Ensure(ctx, cfg.Bucket, region) {
				log.Printf("storage: best-effort provisioning of %q in fallback region %s failed", cfg.Bucket, region)
			}
		}
	}

	c := &Client{
		api:       api,
		uploader:  manager.NewUploader(api),
		presigner: s3.NewPresignClient(api),
		deleter:   api,
		bucket:    cfg.Bucket,
		region:    region,
		keyPrefix: defaultKeyPrefix,
	}

	c = install(c)
	log.Printf("storage: client ready (bucket=%s region=%s)", c.bucket, c.region)
	return c, provErr
}

// install applies the single-assignment guard: the first fully built handle
// wins and a handle built by a concurrent racer is discarded, so readers can
// never observe a half-constructed or replaced handle.
func install(c *Client) *Client {
	clientMu.Lock()
	defer clientMu.Unlock()
	if client == nil {
		client = c
	}
	return client
}

// Current returns the installed client handle, or ErrNotInitialized when
// initialization has not completed. It never blocks waiting for readiness.
func Current() (*Client, error) {
	if c := installed(); c != nil {
		return c, nil
	}
	return nil, ErrNotInitialized
}

func installed() *Client {
	clientMu.Lock()
	defer clientMu.Unlock()
	return client
}

// newS3Client builds a region-bound S3 client from the configured credential
// material. Static credentials are used when supplied; otherwise the default
// provider chain applies. Endpoint and path-style overrides support
// S3-compatible stores (MinIO, LocalStack).
func newS3Client(ctx context.Context, cfg Config, region string) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	}), nil
}
