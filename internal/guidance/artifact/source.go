package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ErrNotModified is returned by a Source when the artifact still matches
// the ETag the caller already holds.
var ErrNotModified = errors.New("model artifact not modified")

// Fetched is a raw artifact document and the tag identifying its content.
type Fetched struct {
	Data []byte
	ETag string
}

// Source retrieves artifact documents. etag is the tag of the artifact the
// caller currently holds, or empty.
type Source interface {
	Name() string
	Fetch(ctx context.Context, etag string) (*Fetched, error)
}

// FileSource reads an artifact from local disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Fetch(_ context.Context, etag string) (*Fetched, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact %s: %w", s.Path, err)
	}

	sum := sha256.Sum256(data)
	tag := hex.EncodeToString(sum[:])
	if etag != "" && etag == tag {
		return nil, ErrNotModified
	}
	return &Fetched{Data: data, ETag: tag}, nil
}

// S3API is the subset of the S3 client used to download artifacts.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source downloads an artifact from an S3 bucket.
type S3Source struct {
	client S3API
	bucket string
	key    string
}

func NewS3Source(client S3API, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Name() string { return "s3://" + s.bucket + "/" + s.key }

func (s *S3Source) Fetch(ctx context.Context, etag string) (*Fetched, error) {
	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	}
	if etag != "" {
		in.IfNoneMatch = aws.String(`"` + etag + `"`)
	}

	out, err := s.client.GetObject(ctx, in)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotModified" {
			return nil, ErrNotModified
		}
		return nil, fmt.Errorf("download %s: %w", s.Name(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Name(), err)
	}

	tag := strings.Trim(aws.ToString(out.ETag), `"`)
	if tag == "" {
		sum := sha256.Sum256(data)
		tag = hex.EncodeToString(sum[:])
	}
	if etag != "" && tag == etag {
		return nil, ErrNotModified
	}

	return &Fetched{Data: data, ETag: tag}, nil
}
