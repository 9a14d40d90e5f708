package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// defaultKeyPrefix namespaces all product image objects.
const defaultKeyPrefix = "products"

// uploadURLTTL is the validity window of the signed URL attached to a fresh
// upload result.
const uploadURLTTL = 24 * time.Hour

// MaxUploadBytes is the inbound file size ceiling enforced at the HTTP
// boundary before any remote call is attempted.
const MaxUploadBytes = 10 << 20 // 10 MiB

// allowedImageTypes is the MIME allow-list for inbound uploads.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsAllowedImageType is the filter hook applied to a declared MIME type
// before the stream is accepted.
func IsAllowedImageType(contentType string) bool {
	return allowedImageTypes[strings.ToLower(contentType)]
}

// uploadManager is the slice of the transfer manager the adapter needs.
// *manager.Uploader satisfies it.
type uploadManager interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// UploadResult describes one successfully stored object. It is produced once
// per upload and never mutated; the caller associates it with a product
// record.
type UploadResult struct {
	Bucket       string
	Key          string
	SignedURL    string // empty when URL issuance failed; retry via SignedURL
	ETag         string
	Size         int64
	ContentType  string
	OriginalName string
}

// Upload streams body to the remote store under a freshly generated key and
// returns the upload result. The transfer goes through the multipart manager
// so large inputs are never buffered whole in memory. On failure a
// *UploadError carrying the generated key is returned; no cleanup is
// attempted here, since the transfer either left nothing behind or the
// caller can delete the key speculatively.
func (c *Client) Upload(ctx context.Context, body io.Reader, originalName, contentType string) (*UploadResult, error) {
	key := makeKey(c.keyPrefix, originalName)

	counted := &countingReader{r: body}
	out, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        counted,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, &UploadError{Key: key, Err: err}
	}

	// Signing failure is non-fatal: the object is stored and the URL can be
	// reissued later.
	url := c.SignedURL(ctx, key, uploadURLTTL)

	return &UploadResult{
		Bucket:       c.bucket,
		Key:          key,
		SignedURL:    url,
		ETag:         strings.Trim(aws.ToString(out.ETag), `"`),
		Size:         counted.n,
		ContentType:  contentType,
		OriginalName: originalName,
	}, nil
}

// makeKey builds `{prefix}/{unix-millis}-{uuid}{ext}`. The timestamp keeps
// keys roughly sortable; the random suffix makes collisions negligible
// without any central coordination. Keys are never reused.
func makeKey(prefix, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s/%d-%s%s", prefix, time.Now().UnixMilli(), uuid.NewString(), ext)
}

// countingReader counts bytes as the transfer manager drains the stream.
type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}
