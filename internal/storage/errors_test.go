package storage

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	smithy "github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

func responseError(status int) error {
	return &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
			Err:      fmt.Errorf("http status %d", status),
		},
	}
}

func TestClassify_APICodes(t *testing.T) {
	cases := []struct {
		code string
		want errKind
	}{
		{"PermanentRedirect", kindRegionMismatch},
		{"AuthorizationHeaderMalformed", kindRegionMismatch},
		{"IllegalLocationConstraintException", kindRegionMismatch},
		{"NoSuchBucket", kindNotFound},
		{"NoSuchKey", kindNotFound},
		{"NotFound", kindNotFound},
		{"AccessDenied", kindForbidden},
		{"Forbidden", kindForbidden},
		{"SlowDown", kindOther},
	}
	for _, tc := range cases {
		if got := classify(apiError(tc.code)); got != tc.want {
			t.Errorf("classify(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestClassify_HTTPStatusFallback(t *testing.T) {
	cases := []struct {
		status int
		want   errKind
	}{
		{http.StatusMovedPermanently, kindRegionMismatch},
		{http.StatusNotFound, kindNotFound},
		{http.StatusForbidden, kindForbidden},
		{http.StatusInternalServerError, kindOther},
	}
	for _, tc := range cases {
		if got := classify(responseError(tc.status)); got != tc.want {
			t.Errorf("classify(status %d) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestClassify_WrappedError(t *testing.T) {
	err := fmt.Errorf("probe bucket: %w", apiError("NoSuchBucket"))
	if got := classify(err); got != kindNotFound {
		t.Errorf("classify(wrapped NoSuchBucket) = %v, want kindNotFound", got)
	}
}

func TestClassify_NilAndPlainErrors(t *testing.T) {
	if got := classify(nil); got != kindOther {
		t.Errorf("classify(nil) = %v, want kindOther", got)
	}
	if got := classify(errors.New("connection refused")); got != kindOther {
		t.Errorf("classify(plain error) = %v, want kindOther", got)
	}
}

func TestUploadError_UnwrapAndKey(t *testing.T) {
	cause := errors.New("connection reset")
	err := &UploadError{Key: "products/1-a.jpg", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("UploadError should unwrap to its cause")
	}
	var upErr *UploadError
	if !errors.As(fmt.Errorf("attach: %w", err), &upErr) {
		t.Fatal("errors.As should find *UploadError through wrapping")
	}
	if upErr.Key != "products/1-a.jpg" {
		t.Errorf("Key = %q, want the generated key", upErr.Key)
	}
}
