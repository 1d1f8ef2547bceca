package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")

func stubSeams(t *testing.T) {
	t.Helper()

	origLoad, origNew, origPut, origName := loadDefaultAWSConfig, newS3ClientFromConfig, putObject, newObjectName
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
		newObjectName = origName
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newObjectName = func() string { return "fixed" }
}

func newUploader() *S3Uploader {
	return NewS3Uploader(S3Config{
		Region:       "us-east-1",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		BaseEndpoint: "http://127.0.0.1:9000/",
		Bucket:       "foodduck",
	})
}

func TestS3Uploader_Upload(t *testing.T) {
	stubSeams(t)

	var in *s3.PutObjectInput
	var body []byte
	putObject = func(c *s3.Client, ctx context.Context, i *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		in = i
		body, _ = io.ReadAll(i.Body)
		return &s3.PutObjectOutput{}, nil
	}

	url, err := newUploader().Upload(context.Background(), "account/profile/", pngHeader)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000/foodduck/account/profile/fixed.png", url)
	require.NotNil(t, in)
	assert.Equal(t, "foodduck", aws.ToString(in.Bucket))
	assert.Equal(t, "account/profile/fixed.png", aws.ToString(in.Key))
	assert.Equal(t, "image/png", aws.ToString(in.ContentType))
	assert.Equal(t, int64(len(pngHeader)), aws.ToInt64(in.ContentLength))
	assert.Equal(t, pngHeader, body)
}

func TestS3Uploader_Upload_Errors(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		stubSeams(t)
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("no region")
		}
		_, err := newUploader().Upload(context.Background(), "d/", pngHeader)
		require.ErrorContains(t, err, "no region")
	})

	t.Run("put", func(t *testing.T) {
		stubSeams(t)
		putObject = func(c *s3.Client, ctx context.Context, i *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, errors.New("put-fail")
		}
		_, err := newUploader().Upload(context.Background(), "d/", pngHeader)
		require.ErrorContains(t, err, "put-fail")
	})
}

func TestS3Uploader_BuildsClientOnce(t *testing.T) {
	stubSeams(t)

	loads := 0
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		loads++
		if loads == 1 {
			return aws.Config{}, errors.New("transient")
		}
		return aws.Config{}, nil
	}
	var clients []*s3.Client
	putObject = func(c *s3.Client, ctx context.Context, i *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		clients = append(clients, c)
		return &s3.PutObjectOutput{}, nil
	}

	u := newUploader()
	_, err := u.Upload(context.Background(), "d/", pngHeader)
	require.ErrorContains(t, err, "transient")

	for i := 0; i < 3; i++ {
		_, err := u.Upload(context.Background(), "d/", pngHeader)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, loads, "a failed load is retried, a built client is reused")
	require.Len(t, clients, 3)
	assert.Same(t, clients[0], clients[2])
}

func TestObjectKey_UnknownType(t *testing.T) {
	stubSeams(t)
	assert.Equal(t, "account/profile/fixed", ObjectKey("account/profile/", "application/octet-stream"))
}
