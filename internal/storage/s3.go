package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Uploader writes artifacts to an S3 bucket.
type S3Uploader struct {
	client *s3.Client
	bucket string
	logger *zap.SugaredLogger
}

var _ Uploader = (*S3Uploader)(nil)

func NewS3Uploader(ctx context.Context, bucket string) (*S3Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Uploader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		logger: zap.S().With("bucket", bucket),
	}, nil
}

func (u *S3Uploader) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", u.bucket, key)
	u.logger.Debugw("artifact_uploaded", "key", key, "bytes", len(data))
	return url, nil
}
