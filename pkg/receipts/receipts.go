// Package receipts archives photographed receipts in S3-compatible object
// storage.
package receipts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("receipts: archive disabled")

// Archive stores receipt images and hands out temporary links to them.
type Archive interface {
	Put(ctx context.Context, owner string, data []byte, mimeType string) (string, error)
	Link(ctx context.Context, key string) (string, error)
}

// Config selects the bucket and credentials.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 is an Archive backed by an S3 bucket.
type S3 struct {
	bucket  string
	client  putter
	presign func(ctx context.Context, in *s3.GetObjectInput) (string, error)
	now     func() time.Time
	newID   func() string
}

// loadAWSConfig is a seam for tests.
var loadAWSConfig = config.LoadDefaultConfig

// NewS3 builds the archive. An empty bucket yields ErrDisabled.
func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, ErrDisabled
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := loadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("receipts: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	pc := s3.NewPresignClient(client)
	return &S3{
		bucket: cfg.Bucket,
		client: client,
		presign: func(ctx context.Context, in *s3.GetObjectInput) (string, error) {
			req, err := pc.PresignGetObject(ctx, in, s3.WithPresignExpires(15*time.Minute))
			if err != nil {
				return "", err
			}
			return req.URL, nil
		},
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Key builds the object key of a receipt stored at t.
func Key(owner string, t time.Time, id, mimeType string) string {
	if owner == "" {
		owner = "local"
	}
	t = t.UTC()
	key := fmt.Sprintf("receipts/%s/%04d/%02d/%02d/%s", owner, t.Year(), int(t.Month()), t.Day(), id)
	return key + extension(mimeType)
}

var knownExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

func extension(mimeType string) string {
	if ext, ok := knownExtensions[mimeType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func (a *S3) Put(ctx context.Context, owner string, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("receipts: empty image")
	}
	key := Key(owner, a.now(), a.newID(), mimeType)
	in := &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if mimeType != "" {
		in.ContentType = aws.String(mimeType)
	}
	if _, err := a.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("receipts: put %s: %w", key, err)
	}
	return key, nil
}

// Link returns a presigned download URL valid for 15 minutes.
func (a *S3) Link(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("receipts: no receipt archived")
	}
	url, err := a.presign(ctx, &s3.GetObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(key)})
	if err != nil {
		return "", fmt.Errorf("receipts: presign %s: %w", key, err)
	}
	return url, nil
}
