package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aleister1102/hashwatch/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// S3Bucket stores objects in an S3-compatible bucket below an optional key prefix.
type S3Bucket struct {
	client *minio.Client
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Client creates a minio client for the configured endpoint. Static keys are
// used when both are set; otherwise credentials come from the AWS and MinIO
// environment variables and finally the instance IAM role.
func NewS3Client(cfg config.StorageConfig) (*minio.Client, error) {
	transport := newTransport()

	var creds *credentials.Credentials
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.IAM{Client: &http.Client{Transport: transport}},
		})
	}

	opts := &minio.Options{
		Creds:     creds,
		Secure:    cfg.S3UseSSL,
		Region:    cfg.S3Region,
		Transport: transport,
	}
	return minio.New(cfg.S3Endpoint, opts)
}

// NewS3Bucket wraps client for bucket and prefix. When create is true a missing
// bucket is created.
func NewS3Bucket(ctx context.Context, client *minio.Client, bucket, prefix, region string, create bool, logger zerolog.Logger) (*S3Bucket, error) {
	if client == nil {
		return nil, fmt.Errorf("minio client is required")
	}
	b := &S3Bucket{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.With().Str("component", "S3Bucket").Str("bucket", bucket).Logger(),
	}
	if create {
		if err := ensureBucket(ctx, client, bucket, region); err != nil {
			return nil, NewStorageError("open", b.String(), "", fmt.Errorf("ensure bucket: %w", err))
		}
	}
	return b, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string, region string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

func (b *S3Bucket) String() string {
	if b.prefix == "" {
		return "s3://" + b.bucket
	}
	return "s3://" + b.bucket + "/" + b.prefix
}

// Get downloads an object with its user metadata.
func (b *S3Bucket) Get(ctx context.Context, key string) (*Object, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("get", b.String(), key, err)
	}

	obj, err := b.client.GetObject(ctx, b.bucket, joinKey(b.prefix, key), minio.GetObjectOptions{})
	if err != nil {
		return nil, NewStorageError("get", b.String(), key, mapS3Error(err))
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, NewStorageError("get", b.String(), key, mapS3Error(err))
	}

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, NewStorageError("get", b.String(), key, mapS3Error(err))
	}

	return &Object{
		Key:         key,
		Body:        body,
		ContentType: info.ContentType,
		Metadata:    cloneMetadata(info.UserMetadata),
	}, nil
}

// Put uploads an object with a single PutObject call.
func (b *S3Bucket) Put(ctx context.Context, obj Object) error {
	if err := validateKey(obj.Key); err != nil {
		return NewStorageError("put", b.String(), obj.Key, err)
	}

	opts := minio.PutObjectOptions{
		ContentType:  obj.ContentType,
		UserMetadata: cloneMetadata(obj.Metadata),
	}
	_, err := b.client.PutObject(ctx, b.bucket, joinKey(b.prefix, obj.Key), bytes.NewReader(obj.Body), int64(len(obj.Body)), opts)
	if err != nil {
		return NewStorageError("put", b.String(), obj.Key, mapS3Error(err))
	}
	return nil
}

// List returns the keys under prefix relative to the bucket prefix.
func (b *S3Bucket) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := prefix
	if b.prefix != "" {
		fullPrefix = b.prefix + "/" + prefix
	}

	var keys []string
	for info := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: fullPrefix, Recursive: true}) {
		if info.Err != nil {
			return nil, NewStorageError("list", b.String(), prefix, mapS3Error(info.Err))
		}
		key := info.Key
		if b.prefix != "" {
			key = strings.TrimPrefix(key, b.prefix+"/")
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; the minio client holds no resources that need releasing.
func (b *S3Bucket) Close() error {
	return nil
}

// mapS3Error translates S3 error codes into the package sentinels.
func mapS3Error(err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey":
		return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %v", ErrBucketNotFound, err)
	default:
		return err
	}
}
