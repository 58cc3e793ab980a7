package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// BlobStore is the external object store holding vehicle images and company logos.
// Objects are addressed by the public URL returned from Store.
type BlobStore interface {
	Store(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ErrForeignURL is returned for URLs that do not point into the configured bucket.
var ErrForeignURL = errors.New("url is not managed by this blob store")

// maxFetchSize bounds logo downloads embedded into contracts.
const maxFetchSize = 5 << 20

// objectKeyFromURL strips baseURL from url.
func objectKeyFromURL(baseURL, url string) (string, error) {
	prefix := strings.TrimRight(baseURL, "/") + "/"
	if !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", ErrForeignURL
	}
	return strings.TrimPrefix(url, prefix), nil
}

func joinURL(baseURL, objectKey string) string {
	return strings.TrimRight(baseURL, "/") + "/" + objectKey
}

type minioBlobStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioBlobStore connects to a MinIO endpoint. publicURL defaults to the endpoint's bucket path.
func NewMinioBlobStore(endpoint, accessKey, secretKey string, useSSL bool, bucket, publicURL string) (BlobStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	if publicURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
	}
	return &minioBlobStore{client: client, bucket: bucket, baseURL: publicURL}, nil
}

// EnsureBucket creates the bucket when missing.
func (m *minioBlobStore) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *minioBlobStore) Store(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", objectKey, err)
	}
	return joinURL(m.baseURL, objectKey), nil
}

func (m *minioBlobStore) Delete(ctx context.Context, url string) error {
	key, err := objectKeyFromURL(m.baseURL, url)
	if err != nil {
		return err
	}
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

func (m *minioBlobStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	key, err := objectKeyFromURL(m.baseURL, url)
	if err != nil {
		return nil, err
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(io.LimitReader(obj, maxFetchSize))
}

type s3BlobStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3BlobStore builds an AWS S3 backed store. publicURL defaults to the virtual-hosted bucket URL.
func NewS3BlobStore(ctx context.Context, region, accessKeyID, secretAccessKey, bucket, publicURL string) (BlobStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")))
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &s3BlobStore{client: s3.NewFromConfig(sdkConfig), bucket: bucket, baseURL: publicURL}, nil
}

func (u *s3BlobStore) Store(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(objectKey),
		Body:          reader,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", objectKey, err)
	}
	return joinURL(u.baseURL, objectKey), nil
}

func (u *s3BlobStore) Delete(ctx context.Context, url string) error {
	key, err := objectKeyFromURL(u.baseURL, url)
	if err != nil {
		return err
	}
	_, err = u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (u *s3BlobStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	key, err := objectKeyFromURL(u.baseURL, url)
	if err != nil {
		return nil, err
	}
	out, err := u.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(out.Body, maxFetchSize)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
