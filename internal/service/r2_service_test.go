package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (s *stubPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.input = params
	s.body, _ = io.ReadAll(params.Body)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	return &s3.PutObjectOutput{}, s.err
}

func TestR2Service_Upload(t *testing.T) {
	putter := &stubPutter{}
	svc := newR2Service(putter, "media", "https://cdn.example.com", time.Second)

	url, err := svc.Upload(context.Background(), "generated/brief-1/abc.png", pngHeader, "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/generated/brief-1/abc.png", url)
	assert.Equal(t, "media", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, pngHeader, putter.body)
}

func TestR2Service_UploadError(t *testing.T) {
	svc := newR2Service(&stubPutter{err: errors.New("access denied")}, "media", "https://cdn.example.com", time.Second)

	url, err := svc.Upload(context.Background(), "k", pngHeader, "image/png")
	assert.EqualError(t, err, "access denied")
	assert.Empty(t, url)
}
