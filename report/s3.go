package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/IvanBrykalov/lrutier/residency"
)

// ObjectPutter is the subset of *s3.Client the S3 sink needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink buffers snapshots as JSON lines and uploads them as a single
// object on Close. Nothing is sent before Close.
type S3Sink struct {
	client ObjectPutter
	bucket string
	key    string

	mu     sync.Mutex
	buf    bytes.Buffer
	enc    *json.Encoder
	closed bool
}

// NewS3Sink returns a sink that writes to s3://bucket/key on Close.
func NewS3Sink(client ObjectPutter, bucket, key string) (*S3Sink, error) {
	if client == nil {
		return nil, errors.New("report: s3 client is nil")
	}
	if bucket == "" {
		return nil, errors.New("report: bucket name cannot be empty")
	}
	if key == "" {
		return nil, errors.New("report: object key cannot be empty")
	}
	s := &S3Sink{client: client, bucket: bucket, key: key}
	s.enc = json.NewEncoder(&s.buf)
	return s, nil
}

// Report appends snap as one JSON line.
func (s *S3Sink) Report(snap residency.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("report: s3 sink closed")
	}
	if err := s.enc.Encode(snap); err != nil {
		return fmt.Errorf("report: encode snapshot: %w", err)
	}
	return nil
}

// Close uploads the buffered lines. It is safe to call more than once;
// only the first call uploads.
func (s *S3Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(s.buf.Bytes()),
		ContentLength: aws.Int64(int64(s.buf.Len())),
		ContentType:   aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("report: upload s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

var _ residency.Sink = (*S3Sink)(nil)
