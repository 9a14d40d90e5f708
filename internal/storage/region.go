package storage

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FallbackRegion is used when every candidate probe reports a region
// mismatch, or when resolution cannot run at all.
const FallbackRegion = "us-east-1"

// defaultCandidateRegions is the ordered list of regions probed when the
// configured region hint does not answer for the bucket.
var defaultCandidateRegions = []string{
	"us-east-1",
	"us-east-2",
	"us-west-1",
	"us-west-2",
	"eu-west-1",
	"eu-central-1",
	"ap-south-1",
	"ap-southeast-1",
	"ap-northeast-1",
}

// probeFunc checks whether the bucket answers in the given region. A nil
// error means the bucket is served there.
type probeFunc func(ctx context.Context, region, bucket string) error

// RegionResolver determines which region currently serves a bucket by
// probing an ordered candidate list.
type RegionResolver struct {
	probe      probeFunc
	candidates []string
	fallback   string
}

// NewRegionResolver builds a resolver whose probes use region-bound clients
// derived from cfg. A non-empty preferred region is tried first.
func NewRegionResolver(cfg Config) *RegionResolver {
	return &RegionResolver{
		probe: func(ctx context.Context, region, bucket string) error {
			client, err := newS3Client(ctx, cfg, region)
			if err != nil {
				return err
			}
			_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
				Bucket: aws.String(bucket),
			})
			return err
		},
		candidates: candidateList(cfg.Region),
		fallback:   FallbackRegion,
	}
}

// Resolve returns the region serving bucket. Each candidate is probed exactly
// once; the first positive answer wins. A non-region failure (forbidden,
// malformed name) makes the current candidate authoritative, since the bucket
// likely lives there but is inaccessible for another reason. If every probe
// reports a region mismatch the fallback region is returned.
func (r *RegionResolver) Resolve(ctx context.Context, bucket string) string {
	for _, region := range r.candidates {
		err := r.probe(ctx, region, bucket)
		if err == nil {
			return region
		}
		if classify(err) == kindRegionMismatch {
			continue
		}
		log.Printf("storage: probe for bucket %q in %s failed (%v), treating region as authoritative", bucket, region, err)
		return region
	}

	log.Printf("storage: could not locate bucket %q in any candidate region, falling back to %s with degraded confidence", bucket, r.fallback)
	return r.fallback
}

// candidateList orders the probe candidates, moving preferred (if set) to the
// front and dropping its duplicate from the defaults.
func candidateList(preferred string) []string {
	if preferred == "" {
		return defaultCandidateRegions
	}
	out := make([]string, 0, len(defaultCandidateRegions)+1)
	out = append(out, preferred)
	for _, r := range defaultCandidateRegions {
		if r != preferred {
			out = append(out, r)
		}
	}
	return out
}
