// Package artifacts stores failure screenshots, locally or in S3.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kuitang/flightsearch-e2e/internal/config"
)

// Store persists one artifact and returns where it went.
type Store interface {
	Save(ctx context.Context, key string, content []byte, contentType string) (string, error)
}

// New builds the stores enabled by cfg. It returns nil when artifacts are disabled.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	var stores Multi
	if cfg.ArtifactsDir != "" {
		stores = append(stores, NewDirStore(cfg.ArtifactsDir))
	}
	if cfg.ArtifactsBucket != "" {
		s3Store, err := NewS3Store(ctx, S3Config{
			Endpoint:        cfg.AWSEndpointS3,
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			BucketName:      cfg.ArtifactsBucket,
			UsePathStyle:    cfg.AWSEndpointS3 != "",
		})
		if err != nil {
			return nil, err
		}
		stores = append(stores, s3Store)
	}
	switch len(stores) {
	case 0:
		return nil, nil
	case 1:
		return stores[0], nil
	default:
		return stores, nil
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9]+`)

// ScreenshotKey names the screenshot of a failed scenario:
// runs/<run id>/<scenario slug>-<utc timestamp>-<8 hex>.png
// Keys are unique per call, even for one scenario name within one second.
func ScreenshotKey(runID, scenario string, at time.Time) string {
	slug := strings.Trim(unsafeKeyChars.ReplaceAllString(strings.ToLower(scenario), "-"), "-")
	if slug == "" {
		slug = "scenario"
	}
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("runs/%s/%s-%s-%s.png", runID, slug, at.UTC().Format("20060102T150405Z"), suffix)
}

// DirStore writes artifacts below a local directory.
type DirStore struct {
	dir string
}

// NewDirStore returns a store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Save writes content to dir/key, creating parent directories.
func (d *DirStore) Save(_ context.Context, key string, content []byte, _ string) (string, error) {
	path := filepath.Join(d.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("artifacts: create dir for %q: %w", key, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("artifacts: write %q: %w", key, err)
	}
	return path, nil
}

// Multi saves to every store and reports the locations joined by ", ".
// All stores are attempted even when one fails.
type Multi []Store

func (m Multi) Save(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	var locations []string
	var saveErrs []error
	for _, s := range m {
		loc, err := s.Save(ctx, key, content, contentType)
		if err != nil {
			saveErrs = append(saveErrs, err)
			continue
		}
		locations = append(locations, loc)
	}
	return strings.Join(locations, ", "), errors.Join(saveErrs...)
}
