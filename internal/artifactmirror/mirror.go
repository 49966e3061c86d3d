// Package artifactmirror optionally mirrors a completed documentation run's
// docs root to an S3-compatible bucket for off-box retention, the way the
// teacher's artifact store mirrors run artifacts.
package artifactmirror

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"codedocs/internal/config"
)

// Mirror uploads a docs root's files to an S3-compatible bucket, one object
// per file, keyed by task id.
type Mirror struct {
	client     *minio.Client
	bucketName string
	region     string

	initOnce sync.Once
	initErr  error
}

// New builds a Mirror from cfg. It returns (nil, nil) when cfg.Enabled is
// false, so callers can treat a disabled mirror as a no-op without branching.
func New(cfg config.MirrorConfig) (*Mirror, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("artifactmirror: access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("artifactmirror: bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("artifactmirror: init client: %w", err)
	}

	return &Mirror{client: client, bucketName: bucket, region: region}, nil
}

func (m *Mirror) ensureBucket(ctx context.Context) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("artifactmirror: mirror is nil")
	}
	m.initOnce.Do(func() {
		exists, err := m.client.BucketExists(ctx, m.bucketName)
		if err != nil {
			m.initErr = err
			return
		}
		if exists {
			return
		}
		m.initErr = m.client.MakeBucket(ctx, m.bucketName, minio.MakeBucketOptions{Region: m.region})
	})
	return m.initErr
}

// MirrorDocsRoot walks docsRoot and uploads every regular file, keyed by
// "<taskID>/<relative path>". A nil Mirror is a no-op, so callers can invoke
// this unconditionally after the Aggregator completes.
func (m *Mirror) MirrorDocsRoot(ctx context.Context, taskID, docsRoot string) error {
	if m == nil {
		return nil
	}
	if err := m.ensureBucket(ctx); err != nil {
		return fmt.Errorf("artifactmirror: ensure bucket: %w", err)
	}

	return filepath.WalkDir(docsRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(docsRoot, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("artifactmirror: read %s: %w", rel, err)
		}
		key := objectKey(taskID, filepath.ToSlash(rel))
		_, err = m.client.PutObject(ctx, m.bucketName, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
		if err != nil {
			return fmt.Errorf("artifactmirror: put %s: %w", rel, err)
		}
		return nil
	})
}

func objectKey(taskID, relPath string) string {
	return strings.TrimSpace(taskID) + "/" + strings.TrimLeft(relPath, "/")
}
