package storage

import (
	"context"
	"errors"
	"testing"
)

// scriptedResolver builds a resolver whose probe consults a per-region
// answer map and counts its calls.
func scriptedResolver(candidates []string, answers map[string]error, calls *[]string) *RegionResolver {
	return &RegionResolver{
		probe: func(_ context.Context, region, _ string) error {
			*calls = append(*calls, region)
			return answers[region]
		},
		candidates: candidates,
		fallback:   FallbackRegion,
	}
}

func TestResolve_FirstCandidateWins(t *testing.T) {
	var calls []string
	r := scriptedResolver(
		[]string{"eu-west-1", "us-east-1"},
		map[string]error{"eu-west-1": nil},
		&calls,
	)

	if got := r.Resolve(context.Background(), "b"); got != "eu-west-1" {
		t.Errorf("Resolve = %q, want eu-west-1", got)
	}
	if len(calls) != 1 {
		t.Errorf("probe calls = %d, want 1 (early exit)", len(calls))
	}
}

func TestResolve_ThirdCandidateAfterMismatches(t *testing.T) {
	var calls []string
	r := scriptedResolver(
		[]string{"us-east-1", "us-east-2", "us-west-2", "eu-west-1"},
		map[string]error{
			"us-east-1": apiError("PermanentRedirect"),
			"us-east-2": apiError("PermanentRedirect"),
			"us-west-2": nil,
		},
		&calls,
	)

	if got := r.Resolve(context.Background(), "b"); got != "us-west-2" {
		t.Errorf("Resolve = %q, want us-west-2", got)
	}
	if len(calls) != 3 {
		t.Errorf("probe calls = %d, want exactly 3", len(calls))
	}
}

func TestResolve_NonRegionErrorIsAuthoritative(t *testing.T) {
	var calls []string
	r := scriptedResolver(
		[]string{"us-east-1", "us-east-2"},
		map[string]error{
			"us-east-1": apiError("AccessDenied"),
			"us-east-2": nil,
		},
		&calls,
	)

	// Forbidden implies the bucket exists in the probed region but denies
	// this caller; probing must stop there.
	if got := r.Resolve(context.Background(), "b"); got != "us-east-1" {
		t.Errorf("Resolve = %q, want us-east-1", got)
	}
	if len(calls) != 1 {
		t.Errorf("probe calls = %d, want 1", len(calls))
	}
}

func TestResolve_ExhaustionFallsBack(t *testing.T) {
	candidates := []string{"us-east-2", "us-west-1", "eu-west-1"}
	answers := map[string]error{}
	for _, r := range candidates {
		answers[r] = apiError("PermanentRedirect")
	}

	var calls []string
	r := scriptedResolver(candidates, answers, &calls)

	if got := r.Resolve(context.Background(), "b"); got != FallbackRegion {
		t.Errorf("Resolve = %q, want fallback %q", got, FallbackRegion)
	}
	if len(calls) != len(candidates) {
		t.Errorf("probe calls = %d, want %d (bounded by candidate count)", len(calls), len(candidates))
	}
}

func TestResolve_TransportErrorIsAuthoritative(t *testing.T) {
	var calls []string
	r := scriptedResolver(
		[]string{"us-west-1"},
		map[string]error{"us-west-1": errors.New("dial tcp: timeout")},
		&calls,
	)

	if got := r.Resolve(context.Background(), "b"); got != "us-west-1" {
		t.Errorf("Resolve = %q, want us-west-1", got)
	}
}

func TestCandidateList_PreferredFirstNoDuplicate(t *testing.T) {
	got := candidateList("eu-west-1")
	if got[0] != "eu-west-1" {
		t.Errorf("first candidate = %q, want preferred eu-west-1", got[0])
	}
	seen := map[string]int{}
	for _, r := range got {
		seen[r]++
	}
	if seen["eu-west-1"] != 1 {
		t.Errorf("preferred region appears %d times, want 1", seen["eu-west-1"])
	}
	if len(got) != len(defaultCandidateRegions) {
		t.Errorf("candidate count = %d, want %d", len(got), len(defaultCandidateRegions))
	}
}

func TestCandidateList_UnknownPreferredPrepended(t *testing.T) {
	got := candidateList("me-south-1")
	if got[0] != "me-south-1" {
		t.Errorf("first candidate = %q, want me-south-1", got[0])
	}
	if len(got) != len(defaultCandidateRegions)+1 {
		t.Errorf("candidate count = %d, want %d", len(got), len(defaultCandidateRegions)+1)
	}
}
