package artifacts

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/kuitang/flightsearch-e2e/internal/config"
)

var png = []byte("\x89PNG\r\n\x1a\nfake")

func TestScreenshotKey(t *testing.T) {
	t.Parallel()
	at := time.Date(2027, time.March, 3, 14, 5, 9, 0, time.FixedZone("CET", 3600))
	got := ScreenshotKey("run-1", "Search round-trip flights: RTM -> MAD", at)
	want := regexp.MustCompile(`^runs/run-1/search-round-trip-flights-rtm-mad-20270303T130509Z-[0-9a-f]{8}\.png$`)
	if !want.MatchString(got) {
		t.Fatalf("ScreenshotKey = %q, want match for %s", got, want)
	}
	if got := ScreenshotKey("run-1", "!!!", at); !strings.HasPrefix(got, "runs/run-1/scenario-") {
		t.Fatalf("empty slug fallback = %q", got)
	}
}

func TestScreenshotKey_SameScenarioSameSecondDiffers(t *testing.T) {
	t.Parallel()
	at := time.Date(2027, time.March, 3, 14, 5, 9, 0, time.UTC)
	seen := make(map[string]bool)
	for range 50 {
		key := ScreenshotKey("run-1", "Search <trip type> flights", at)
		if seen[key] {
			t.Fatalf("duplicate key %q", key)
		}
		seen[key] = true
	}
}

func TestDirStore_OutlineExamplesKeepBothScreenshots(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := NewDirStore(dir)
	at := time.Date(2027, time.March, 3, 14, 5, 9, 0, time.UTC)

	for _, content := range [][]byte{[]byte("first"), []byte("second")} {
		if _, err := store.Save(context.Background(), ScreenshotKey("run-1", "outline", at), content, "image/png"); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	matches, err := filepath.Glob(filepath.Join(dir, "runs", "run-1", "outline-*.png"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 screenshots, got %v", matches)
	}
}

func TestScreenshotKey_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		scenario := rapid.String().Draw(t, "scenario")
		key := ScreenshotKey("run-x", scenario, time.Unix(0, 0))
		name := strings.TrimPrefix(key, "runs/run-x/")
		if strings.ContainsAny(name, "/ \\") {
			t.Fatalf("unsafe key %q", key)
		}
		if !strings.HasSuffix(name, ".png") {
			t.Fatalf("key without extension %q", key)
		}
	})
}

func TestDirStore_Save(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := NewDirStore(dir)

	loc, err := store.Save(context.Background(), "runs/r1/a.png", png, "image/png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if loc != filepath.Join(dir, "runs", "r1", "a.png") {
		t.Fatalf("unexpected location %q", loc)
	}
	got, err := os.ReadFile(loc)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, png) {
		t.Fatalf("content mismatch")
	}
}

func TestS3Store_SaveAndGet(t *testing.T) {
	t.Parallel()
	store := TestS3Store(t, "e2e-artifacts")
	ctx := context.Background()

	loc, err := store.Save(ctx, "runs/r1/a.png", png, "image/png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if loc != "s3://e2e-artifacts/runs/r1/a.png" {
		t.Fatalf("unexpected location %q", loc)
	}

	got, err := store.Get(ctx, "runs/r1/a.png")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, png) {
		t.Fatalf("content mismatch")
	}

	if _, err := store.Get(ctx, "runs/r1/missing.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("disk full")
}

func TestMulti_SavesEverywhereAndJoinsErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s3Store := TestS3Store(t, "multi")
	m := Multi{failingStore{}, NewDirStore(dir), s3Store}

	loc, err := m.Save(context.Background(), "k.png", png, "image/png")
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !strings.Contains(loc, dir) || !strings.Contains(loc, "s3://multi/k.png") {
		t.Fatalf("expected both locations, got %q", loc)
	}
}

func TestNew_DisabledReturnsNil(t *testing.T) {
	t.Parallel()
	store, err := New(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if store != nil {
		t.Fatalf("expected nil store, got %T", store)
	}
}

func TestNew_DirOnly(t *testing.T) {
	t.Parallel()
	store, err := New(context.Background(), &config.Config{ArtifactsDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := store.(*DirStore); !ok {
		t.Fatalf("expected *DirStore, got %T", store)
	}
}
