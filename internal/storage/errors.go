package storage

import (
	"errors"
	"fmt"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	smithy "github.com/aws/smithy-go"
)

// ErrNotInitialized is returned by Current when no client handle has been
// installed yet. Callers should treat it as retryable, not fatal.
var ErrNotInitialized = errors.New("storage client not initialized")

// UploadError wraps a failure during the upload pipeline. The Key field names
// the object key the transfer targeted so callers can delete it speculatively.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ProvisioningError is returned by Initialize when bucket provisioning failed
// and the handle was built against the fallback region instead.
type ProvisioningError struct {
	Bucket string
	Region string
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("could not provision bucket %s in region %s; operating degraded against fallback", e.Bucket, e.Region)
}

// errKind is the closed set of remote-error categories this layer acts on.
// All SDK-specific inspection lives in classify; nothing else in the package
// looks at error strings or codes.
type errKind int

const (
	kindOther errKind = iota
	kindRegionMismatch
	kindNotFound
	kindForbidden
)

// classify maps an S3 SDK error onto the errKind taxonomy. It checks the
// smithy API error code first and falls back to the HTTP status of the
// response, since HeadBucket frequently surfaces bare status codes.
func classify(err error) errKind {
	if err == nil {
		return kindOther
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PermanentRedirect", "AuthorizationHeaderMalformed", "IllegalLocationConstraintException":
			return kindRegionMismatch
		case "NoSuchBucket", "NoSuchKey", "NotFound":
			return kindNotFound
		case "Forbidden", "AccessDenied":
			return kindForbidden
		}
	}

	if status, ok := httpStatusCode(err); ok {
		switch status {
		case http.StatusMovedPermanently:
			return kindRegionMismatch
		case http.StatusNotFound:
			return kindNotFound
		case http.StatusForbidden:
			return kindForbidden
		}
	}

	return kindOther
}

// httpStatusCode extracts the HTTP status from an SDK response error.
func httpStatusCode(err error) (int, bool) {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode(), true
	}
	return 0, false
}
