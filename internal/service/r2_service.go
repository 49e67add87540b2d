package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/adwola-api/configs"
)

// Storage uploads an object and returns its public URL.
type Storage interface {
	Upload(ctx context.Context, key string, file []byte, contentType string) (string, error)
}

// objectPutter is the part of *s3.Client used here.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type R2Service struct {
	client    objectPutter
	bucket    string
	publicURL string
	timeout   time.Duration
}

// NewR2Service builds the Cloudflare R2 client once for the life of the process.
func NewR2Service(ctx context.Context, c cfg.Config) (*R2Service, error) {
	if !c.StorageConfigured() {
		return nil, errors.New("R2 storage is not configured")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.R2.AccessKey, c.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2.AccountID))
	})

	return newR2Service(client, c.R2.BucketName, c.R2.PublicURL, c.StorageTimeout), nil
}

func newR2Service(client objectPutter, bucket, publicURL string, timeout time.Duration) *R2Service {
	return &R2Service{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
		timeout:   timeout,
	}
}

func (r *R2Service) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	_, err := r.client.PutObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return fmt.Sprintf("%s/%s", r.publicURL, key), nil
}
