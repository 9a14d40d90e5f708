package storage

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeBucketAPI scripts HeadBucket/CreateBucket outcomes and records calls.
type fakeBucketAPI struct {
	headErr   error
	createErr error

	headCalls    int
	createCalls  int
	createInputs []*s3.CreateBucketInput
}

func (f *fakeBucketAPI) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.headCalls++
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeBucketAPI) CreateBucket(_ context.Context, input *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createCalls++
	f.createInputs = append(f.createInputs, input)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

func TestEnsure_ExistingBucketNoCreate(t *testing.T) {
	api := &fakeBucketAPI{}
	p := NewBucketProvisioner(api)

	// Twice in a row: usable both times, zero creation calls.
	for i := 0; i < 2; i++ {
		if !p.Ensure(context.Background(), "product-images", "eu-west-1") {
			t.Fatalf("Ensure call %d = false, want true", i+1)
		}
	}
	if api.createCalls != 0 {
		t.Errorf("CreateBucket calls = %d, want 0", api.createCalls)
	}
	if api.headCalls != 2 {
		t.Errorf("HeadBucket calls = %d, want 2", api.headCalls)
	}
}

func TestEnsure_MissingBucketCreatedWithLocationConstraint(t *testing.T) {
	api := &fakeBucketAPI{headErr: apiError("NotFound")}
	p := NewBucketProvisioner(api)

	if !p.Ensure(context.Background(), "product-images", "eu-west-1") {
		t.Fatal("Ensure = false, want true after creation")
	}
	if api.createCalls != 1 {
		t.Fatalf("CreateBucket calls = %d, want 1", api.createCalls)
	}
	cfg := api.createInputs[0].CreateBucketConfiguration
	if cfg == nil || string(cfg.LocationConstraint) != "eu-west-1" {
		t.Errorf("LocationConstraint = %v, want eu-west-1", cfg)
	}
}

func TestEnsure_MissingBucketInBaselineRegionOmitsConstraint(t *testing.T) {
	api := &fakeBucketAPI{headErr: apiError("NotFound")}
	p := NewBucketProvisioner(api)

	if !p.Ensure(context.Background(), "product-images", "us-east-1") {
		t.Fatal("Ensure = false, want true after creation")
	}
	if api.createCalls != 1 {
		t.Fatalf("CreateBucket calls = %d, want 1", api.createCalls)
	}
	if api.createInputs[0].CreateBucketConfiguration != nil {
		t.Error("us-east-1 creation must omit the CreateBucketConfiguration")
	}
}

func TestEnsure_CreationFailureIsUnusable(t *testing.T) {
	api := &fakeBucketAPI{
		headErr:   apiError("NoSuchBucket"),
		createErr: apiError("BucketAlreadyOwnedByYou"),
	}
	p := NewBucketProvisioner(api)

	if p.Ensure(context.Background(), "product-images", "eu-west-1") {
		t.Error("Ensure = true, want false when creation fails")
	}
	if api.createCalls != 1 {
		t.Errorf("CreateBucket calls = %d, want exactly 1 (no retries)", api.createCalls)
	}
}

func TestEnsure_ForbiddenTreatedAsUsable(t *testing.T) {
	api := &fakeBucketAPI{headErr: apiError("AccessDenied")}
	p := NewBucketProvisioner(api)

	if !p.Ensure(context.Background(), "product-images", "eu-west-1") {
		t.Error("Ensure = false, want true for a forbidden-but-existing bucket")
	}
	if api.createCalls != 0 {
		t.Errorf("CreateBucket calls = %d, want 0 (creation would fail anyway)", api.createCalls)
	}
}

func TestEnsure_UnexpectedProbeFailure(t *testing.T) {
	api := &fakeBucketAPI{headErr: apiError("InternalError")}
	p := NewBucketProvisioner(api)

	if p.Ensure(context.Background(), "product-images", "eu-west-1") {
		t.Error("Ensure = true, want false on an unexpected probe failure")
	}
	if api.createCalls != 0 {
		t.Errorf("CreateBucket calls = %d, want 0", api.createCalls)
	}
}
