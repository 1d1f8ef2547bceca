// Package storage puts uploaded binary objects (profile images) into an
// S3-compatible bucket and returns their public URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Uploader stores data under dir and returns a URL the object can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, dir string, data []byte) (string, error)
}

type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	newObjectName = func() string { return uuid.NewString() }
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// S3Uploader builds its S3 client on first use and reuses it afterwards.
type S3Uploader struct {
	cfg S3Config

	mu     sync.Mutex
	client *s3.Client
}

func NewS3Uploader(cfg S3Config) *S3Uploader {
	return &S3Uploader{cfg: cfg}
}

func (u *S3Uploader) s3Client(ctx context.Context) (*s3.Client, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.client != nil {
		return u.client, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(u.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.cfg.AccessKey,
			u.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	u.client = newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if u.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(u.cfg.BaseEndpoint)
		}
		o.UsePathStyle = true
	})
	return u.client, nil
}

// ObjectKey returns dir followed by a random name and an extension matching
// contentType, if one is known.
func ObjectKey(dir, contentType string) string {
	return dir + newObjectName() + extensions[contentType]
}

func (u *S3Uploader) Upload(ctx context.Context, dir string, data []byte) (string, error) {
	client, err := u.s3Client(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}

	contentType := http.DetectContentType(data)
	key := ObjectKey(dir, contentType)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return u.url(key), nil
}

func (u *S3Uploader) url(key string) string {
	return strings.TrimRight(u.cfg.BaseEndpoint, "/") + "/" + u.cfg.Bucket + "/" + key
}
