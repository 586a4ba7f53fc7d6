package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"brandpulse/common"
	"brandpulse/types"
)

// S3Archiver writes each finished job as <prefix><job_id>.json
type S3Archiver struct {
	s3     *common.S3
	bucket string
	prefix string
}

// NewS3Archiver creates an archiver. prefix is used as given ("" or ending in "/").
func NewS3Archiver(s3 *common.S3, bucket, prefix string) *S3Archiver {
	return &S3Archiver{s3: s3, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a job
func (a *S3Archiver) Key(jobID string) string {
	return a.prefix + jobID + ".json"
}

// Archive implements Archiver. Jobs already archived are left untouched.
func (a *S3Archiver) Archive(ctx context.Context, ev types.JobEvent) error {
	key := a.Key(ev.JobID)
	exists, err := a.s3.Exists(ctx, a.bucket, key)
	if err != nil {
		return fmt.Errorf("failed to check s3://%s/%s: %w", a.bucket, key, err)
	}
	if exists {
		return nil
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode job event: %w", err)
	}
	if err := a.s3.Put(ctx, a.bucket, key, bytes.NewReader(body), "application/json"); err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", a.bucket, key, err)
	}
	return nil
}
