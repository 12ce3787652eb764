package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/enzococca/soqotra-rockart/internal/config"
)

// Remote implements Backend on S3-compatible object storage via the
// MinIO client. Download links are presigned GET URLs; because minting
// one costs a signature per call and links stay valid for hours, they
// are cached in memory and refreshed before they expire.
type Remote struct {
	client  *minio.Client
	bucket  string
	linkTTL time.Duration
	log     *zap.Logger

	cacheTTL time.Duration
	mu       sync.RWMutex
	links    map[string]cachedLink
}

type cachedLink struct {
	url     string
	expires time.Time
}

// NewRemote creates the MinIO client and ensures the bucket exists.
func NewRemote(cfg *config.Config, log *zap.Logger) (*Remote, error) {
	client, err := minio.New(cfg.RemoteEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.RemoteAccessKey, cfg.RemoteSecretKey, ""),
		Secure: cfg.RemoteUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create remote storage client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.RemoteBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.RemoteBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.RemoteBucket, err)
		}
		log.Info("created storage bucket", zap.String("bucket", cfg.RemoteBucket))
	}

	return &Remote{
		client:   client,
		bucket:   cfg.RemoteBucket,
		linkTTL:  cfg.LinkTTL,
		cacheTTL: cfg.LinkCacheTTL,
		log:      log,
		links:    make(map[string]cachedLink),
	}, nil
}

// Upload streams reader to the bucket under key.
func (r *Remote) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := r.client.PutObject(ctx, r.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Delete removes the object at key and drops any cached link for it.
func (r *Remote) Delete(ctx context.Context, key string) error {
	if err := r.client.RemoveObject(ctx, r.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	r.mu.Lock()
	delete(r.links, key)
	r.mu.Unlock()
	return nil
}

// Link returns a presigned download URL for key, valid for the configured
// link TTL. Cached URLs are reused until the cache TTL elapses.
func (r *Remote) Link(ctx context.Context, key string) (string, error) {
	r.mu.RLock()
	cached, ok := r.links[key]
	r.mu.RUnlock()
	if ok && time.Now().Before(cached.expires) {
		return cached.url, nil
	}

	if _, err := r.client.StatObject(ctx, r.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", ErrNotExist
		}
		return "", fmt.Errorf("stat object %q: %w", key, err)
	}

	u, err := r.client.PresignedGetObject(ctx, r.bucket, key, r.linkTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", key, err)
	}

	link := u.String()
	r.mu.Lock()
	r.links[key] = cachedLink{url: link, expires: time.Now().Add(r.cacheTTL)}
	r.mu.Unlock()

	r.log.Debug("minted presigned link", zap.String("key", key))
	return link, nil
}

// Tag reports "remote".
func (r *Remote) Tag() string {
	return config.BackendRemote
}
