package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestLocal(t *testing.T) (*Local, string) {
	t.Helper()
	dir := t.TempDir()
	l, err := NewLocal(dir, "/static/uploads/")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	return l, dir
}

func TestLocalUploadWritesFile(t *testing.T) {
	l, dir := newTestLocal(t)

	data := []byte("image bytes")
	err := l.Upload(context.Background(), "originals/1_abc.png", bytes.NewReader(data), int64(len(data)), "image/png")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	path := filepath.Join(dir, "originals", "1_abc.png")
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("content mismatch: expected %q, got %q", data, got)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(dir, "originals"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file, got %d", len(entries))
	}
}

func TestLocalUploadOverwrites(t *testing.T) {
	l, dir := newTestLocal(t)

	key := "originals/1_abc.png"
	first := []byte("first")
	second := []byte("second version")
	ctx := context.Background()

	if err := l.Upload(ctx, key, bytes.NewReader(first), int64(len(first)), "image/png"); err != nil {
		t.Fatalf("first Upload failed: %v", err)
	}
	if err := l.Upload(ctx, key, bytes.NewReader(second), int64(len(second)), "image/png"); err != nil {
		t.Fatalf("second Upload failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "originals", "1_abc.png"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, second) {
		t.Errorf("expected latest content, got %q", got)
	}
}

func TestLocalLink(t *testing.T) {
	l, _ := newTestLocal(t)

	key := "thumbnails/thumb_1_abc.jpg"
	data := []byte("thumb")
	if err := l.Upload(context.Background(), key, bytes.NewReader(data), int64(len(data)), "image/jpeg"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	url, err := l.Link(context.Background(), key)
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if url != "/static/uploads/thumbnails/thumb_1_abc.jpg" {
		t.Errorf("unexpected URL %q", url)
	}
}

func TestLocalLinkMissing(t *testing.T) {
	l, _ := newTestLocal(t)

	_, err := l.Link(context.Background(), "originals/never-written.png")
	if !errors.Is(err, ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestLocalDelete(t *testing.T) {
	l, dir := newTestLocal(t)

	key := "originals/1_abc.png"
	data := []byte("x")
	if err := l.Upload(context.Background(), key, bytes.NewReader(data), 1, "image/png"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if err := l.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "originals", "1_abc.png")); !os.IsNotExist(err) {
		t.Error("file should be gone after delete")
	}
}

func TestLocalDeleteMissingIsNoop(t *testing.T) {
	l, _ := newTestLocal(t)

	if err := l.Delete(context.Background(), "originals/never-written.png"); err != nil {
		t.Errorf("deleting a missing object should not error, got %v", err)
	}
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	l, _ := newTestLocal(t)
	ctx := context.Background()

	for _, key := range []string{"../outside.png", "originals/../../etc/passwd", "/abs/path.png", "."} {
		if err := l.Upload(ctx, key, bytes.NewReader([]byte("x")), 1, "image/png"); err == nil {
			t.Errorf("Upload should reject key %q", key)
		}
		if _, err := l.Link(ctx, key); err == nil {
			t.Errorf("Link should reject key %q", key)
		}
		if err := l.Delete(ctx, key); err == nil {
			t.Errorf("Delete should reject key %q", key)
		}
	}
}

func TestLocalTag(t *testing.T) {
	l, _ := newTestLocal(t)
	if l.Tag() != "local" {
		t.Errorf("expected tag local, got %q", l.Tag())
	}
}
