package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const s3ExpiresMetaKey = "expires-at"

// S3API is the subset of the S3 client used by S3Cache
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Cache stores each key as one object under a prefix
type S3Cache struct {
	client    S3API
	bucket    string
	prefix    string
	ttl       time.Duration
	opTimeout time.Duration
	now       func() time.Time
}

// NewS3Cache wraps an S3 client
func NewS3Cache(client S3API, bucket, prefix string, ttl time.Duration) *S3Cache {
	return &S3Cache{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		ttl:       ttl,
		opTimeout: 15 * time.Second,
		now:       time.Now,
	}
}

// NewS3CacheFromConfig loads the default AWS credential chain for region
func NewS3CacheFromConfig(ctx context.Context, bucket, prefix, region string, ttl time.Duration) (*S3Cache, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return NewS3Cache(s3.NewFromConfig(awsCfg), bucket, prefix, ttl), nil
}

// Get downloads an object
func (c *S3Cache) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s3 get: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	if raw, ok := out.Metadata[s3ExpiresMetaKey]; ok {
		if exp, err := time.Parse(time.RFC3339Nano, raw); err == nil && c.now().After(exp) {
			_ = c.Delete(key)
			return nil, false, nil
		}
	}

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("s3 read body: %w", err)
	}
	return data, true, nil
}

// Set uploads an object; expiry is carried in object metadata
func (c *S3Cache) Set(key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	if ttl == 0 {
		ttl = c.ttl
	}
	meta := map[string]string{}
	if ttl > 0 {
		meta[s3ExpiresMetaKey] = c.now().Add(ttl).UTC().Format(time.RFC3339Nano)
	}

	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(c.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
		Metadata:    meta,
	})
	if err != nil {
		return fmt.Errorf("s3 put: %w", err)
	}
	return nil
}

// Delete removes an object
func (c *S3Cache) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}

// Clear removes every object under the prefix
func (c *S3Cache) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 4*c.opTimeout)
	defer cancel()

	var token *string
	for {
		out, err := c.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			Prefix:            aws.String(c.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return fmt.Errorf("s3 list: %w", err)
		}
		for _, obj := range out.Contents {
			if _, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(c.bucket),
				Key:    obj.Key,
			}); err != nil {
				return fmt.Errorf("s3 delete: %w", err)
			}
		}
		if !aws.ToBool(out.IsTruncated) {
			return nil
		}
		token = out.NextContinuationToken
	}
}

// objectKey maps a namespaced key to an object path
func (c *S3Cache) objectKey(key string) string {
	return c.prefix + strings.ReplaceAll(key, ":", "/") + ".json"
}
