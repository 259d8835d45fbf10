package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"studymate-backend/internal/shared/storage/object"
)

const urlCacheSize = 1024

// Options configures the S3-backed store.
type Options struct {
	Region        string
	Bucket        string
	Prefix        string
	KMSKeyID      string
	PublicBaseURL string
	URLExpiry     time.Duration
}

type presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (string, error)
}

// Store implements ObjectStore using Amazon S3.
type Store struct {
	client    *s3.Client
	presign   presigner
	bucket    string
	prefix    string
	kmsKeyID  string
	publicURL string
	expiry    time.Duration
	urls      *expirable.LRU[string, string]
}

// New creates a new S3-backed object store.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, &object.Error{Op: "init", Code: object.CodeNotConfigured, Err: fmt.Errorf("s3 bucket is required")}
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	expiry := opts.URLExpiry
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &Store{
		client:    client,
		presign:   sdkPresigner{c: s3.NewPresignClient(client)},
		bucket:    opts.Bucket,
		prefix:    normalizePrefix(opts.Prefix),
		kmsKeyID:  strings.TrimSpace(opts.KMSKeyID),
		publicURL: strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/"),
		expiry:    expiry,
		// Cached URLs are handed out for at most half their signed lifetime.
		urls: expirable.NewLRU[string, string](urlCacheSize, nil, expiry/2),
	}, nil
}

// Put uploads data to a specific storage key.
func (s *Store) Put(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &object.Error{Op: "put", Key: storageKey, Code: object.CodeCanceled, Err: err}
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	counter := &countingReader{r: r}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        counter,
		ContentType: aws.String(contentType),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, wrapError("put", storageKey, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err))
	}
	return counter.n, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, wrapError("open", storageKey, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err))
	}
	return out.Body, nil
}

// URL returns a public URL when a public base is configured, otherwise a presigned GET.
func (s *Store) URL(ctx context.Context, storageKey string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	objectKey := applyPrefix(s.prefix, storageKey)
	if s.publicURL != "" {
		return s.publicURL + "/" + objectKey, nil
	}
	if cached, ok := s.urls.Get(objectKey); ok {
		return cached, nil
	}

	signed, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", wrapError("url", storageKey, fmt.Errorf("s3 presign bucket=%s key=%s: %w", s.bucket, objectKey, err))
	}
	s.urls.Add(objectKey, signed)
	return signed, nil
}

type sdkPresigner struct {
	c *s3.PresignClient
}

func (p sdkPresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (string, error) {
	req, err := p.c.PresignGetObject(ctx, params, optFns...)
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// wrapError tags SDK failures with a store error code.
func wrapError(op, key string, err error) error {
	e := &object.Error{Op: op, Key: key, Code: object.CodeUnknown, Err: err}

	var status interface{ HTTPStatusCode() int }
	if errors.As(err, &status) {
		e.Status = status.HTTPStatusCode()
	}

	var apiErr smithy.APIError
	switch {
	case errors.Is(err, context.Canceled):
		e.Code = object.CodeCanceled
	case errors.As(err, &apiErr):
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AllAccessDisabled":
			e.Code = object.CodeUnauthorized
		case "NoSuchBucket":
			e.Code = object.CodeNotConfigured
		case "NoSuchKey", "NotFound":
			e.Code = object.CodeNotFound
		}
	}
	if e.Code == object.CodeUnknown {
		switch e.Status {
		case 401, 403:
			e.Code = object.CodeUnauthorized
		}
	}
	return e
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ object.ObjectStore = (*Store)(nil)
