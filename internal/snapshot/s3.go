package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Environment variables holding static S3 credentials. When unset the
// default AWS credential chain applies.
const (
	EnvS3AccessKey = "MCAT_S3_ACCESS_KEY"
	EnvS3SecretKey = "MCAT_S3_SECRET_KEY"
)

// S3Target uploads snapshots to <bucket>/<prefix>/<name>.
type S3Target struct {
	bucket   string
	prefix   string
	uploader *manager.Uploader
}

// NewS3Target creates an S3 target. endpoint is only needed for
// S3-compatible stores and switches to path-style addressing.
func NewS3Target(ctx context.Context, bucket, prefix, region, endpoint string) (*S3Target, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 snapshot target requires s3_bucket to be set")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if key, secret := os.Getenv(EnvS3AccessKey), os.Getenv(EnvS3SecretKey); key != "" && secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Target{
		bucket:   bucket,
		prefix:   prefix,
		uploader: manager.NewUploader(client),
	}, nil
}

// Key returns the object key a snapshot name is stored under.
func (t *S3Target) Key(name string) string {
	if t.prefix == "" {
		return name
	}
	return path.Join(t.prefix, name)
}

func (t *S3Target) Put(ctx context.Context, name string, r io.Reader) error {
	_, err := t.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.Key(name)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading to s3://%s/%s: %w", t.bucket, t.Key(name), err)
	}
	return nil
}

var _ Target = (*S3Target)(nil)
