package datasets

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Replicator copies archived datasets to an S3 bucket
type S3Replicator struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Replicator creates a replicator targeting the given bucket.
// When accessKey is empty, credentials come from the standard AWS
// environment/config chain.
func NewS3Replicator(ctx context.Context, bucket, region, accessKey, secretKey string) (*S3Replicator, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Replicator{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: "datasets/",
	}, nil
}

// Replicate uploads a compressed dataset to S3
func (r *S3Replicator) Replicate(ctx context.Context, key string, data []byte) error {
	fullKey := r.prefix + key
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(fullKey),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload dataset to s3://%s/%s: %w", r.bucket, fullKey, err)
	}
	return nil
}
