package storage

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// deleteAPI is the slice of the S3 client the deleter needs.
type deleteAPI interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Delete removes the object at key. An already-absent key counts as success,
// so the call is safe to make speculatively during cleanup paths. It returns
// false only on unexpected transport or permission errors and never panics.
func (c *Client) Delete(ctx context.Context, key string) bool {
	_, err := c.deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true
	}
	if classify(err) == kindNotFound {
		return true
	}

	log.Printf("storage: delete %q failed: %v", key, err)
	return false
}
