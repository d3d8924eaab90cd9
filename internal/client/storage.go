package client

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// StorageClient wraps the Google Cloud Storage client for audio uploads.
type StorageClient struct {
	client     *storage.Client
	bucketName string
}

// NewStorageClient creates a new storage client.
func NewStorageClient(ctx context.Context, bucketName string) (*StorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &StorageClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Close closes the client.
func (c *StorageClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Upload writes data to the bucket and returns the public object URL.
func (c *StorageClient) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	w := c.client.Bucket(c.bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectName), nil
}

// Name identifies the backend in status output.
func (c *StorageClient) Name() string {
	return "gcs"
}
