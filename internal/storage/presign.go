package storage

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultURLTTL is substituted when a caller asks for a zero or negative
// signing window.
const DefaultURLTTL = time.Hour

// presignAPI is the slice of the presign client the issuer needs.
// *s3.PresignClient satisfies it.
type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// SignedURL issues a time-bounded GET URL for key. It returns the empty
// string on signing failure rather than an error: URL issuance is non-fatal
// to the surrounding operation and callers treat "" as retry-later.
func (c *Client) SignedURL(ctx context.Context, key string, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}

	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = ttl
	})
	if err != nil {
		log.Printf("storage: presign %q failed: %v", key, err)
		return ""
	}

	return req.URL
}
