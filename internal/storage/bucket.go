package storage

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// bucketAPI is the slice of the S3 client the provisioner needs.
type bucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// BucketProvisioner ensures a bucket exists in a target region, creating it
// when absent.
type BucketProvisioner struct {
	api bucketAPI
}

// NewBucketProvisioner wraps a region-bound S3 client.
func NewBucketProvisioner(api bucketAPI) *BucketProvisioner {
	return &BucketProvisioner{api: api}
}

// Ensure reports whether bucket is usable in region. A missing bucket is
// created (one attempt, no retries). A forbidden probe means the bucket
// exists but denies metadata access, which still counts as usable; creating
// it would fail anyway.
func (p *BucketProvisioner) Ensure(ctx context.Context, bucket, region string) bool {
	_, err := p.api.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return true
	}

	switch classify(err) {
	case kindNotFound:
		return p.create(ctx, bucket, region)
	case kindForbidden:
		log.Printf("storage: bucket %q denies HeadBucket, assuming it exists", bucket)
		return true
	default:
		log.Printf("storage: bucket probe for %q failed: %v", bucket, err)
		return false
	}
}

// create attempts bucket creation in region. The LocationConstraint must be
// omitted for us-east-1; S3 rejects it there.
func (p *BucketProvisioner) create(ctx context.Context, bucket, region string) bool {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}
	if region != FallbackRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	if _, err := p.api.CreateBucket(ctx, input); err != nil {
		log.Printf("storage: create bucket %q in %s failed: %v", bucket, region, err)
		return false
	}

	log.Printf("storage: created bucket %q in %s", bucket, region)
	return true
}
