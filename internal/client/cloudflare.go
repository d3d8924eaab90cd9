package client

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// audioCacheControl applies to synthesized clips; keys are never reused.
const audioCacheControl = "public, max-age=31536000, immutable"

// CloudflareClient stores synthesized audio in a Cloudflare R2 bucket.
type CloudflareClient struct {
	s3Client  *s3.Client
	bucket    string
	endpoint  string
	publicURL string
}

// NewCloudflareClient creates a new Cloudflare R2 client.
// publicURL is the bucket's public domain; when empty, object URLs are built from the endpoint.
func NewCloudflareClient(ctx context.Context, accessKeyID, secretKey, endpoint, bucketName, publicURL string) (*CloudflareClient, error) {
	if endpoint == "" || bucketName == "" {
		return nil, fmt.Errorf("r2 endpoint and bucket are required")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	// R2 rejects the streaming checksums newer SDKs send by default.
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &CloudflareClient{
		s3Client:  s3Client,
		bucket:    bucketName,
		endpoint:  strings.TrimRight(endpoint, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Check verifies the bucket is reachable with the configured credentials.
func (c *CloudflareClient) Check(ctx context.Context) error {
	if _, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		return fmt.Errorf("r2 bucket %s unreachable: %w", c.bucket, err)
	}
	return nil
}

// Upload stores one audio clip and returns the URL listeners fetch it from.
func (c *CloudflareClient) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(audioCacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to R2: %w", key, err)
	}

	return c.ObjectURL(key)
}

// ObjectURL returns the URL of key under the public domain, or under the bucket endpoint without one.
func (c *CloudflareClient) ObjectURL(key string) (string, error) {
	if c.publicURL != "" {
		return url.JoinPath(c.publicURL, key)
	}
	return url.JoinPath(c.endpoint, c.bucket, key)
}

// Name identifies the backend in status output.
func (c *CloudflareClient) Name() string {
	return "cloudflare-r2"
}
