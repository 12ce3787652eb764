package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.StorageBackend != BackendLocal {
		t.Errorf("expected default backend local, got %q", cfg.StorageBackend)
	}
	if cfg.MaxUploadBytes != 16*1024*1024 {
		t.Errorf("expected 16 MiB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.ThumbnailWidth != 200 || cfg.ThumbnailHeight != 200 {
		t.Errorf("expected 200x200 thumbnail box, got %dx%d", cfg.ThumbnailWidth, cfg.ThumbnailHeight)
	}
	if len(cfg.AllowedExtensions) != 4 {
		t.Errorf("expected 4 default extensions, got %v", cfg.AllowedExtensions)
	}
	if cfg.LinkTTL != 4*time.Hour || cfg.LinkCacheTTL != 3*time.Hour {
		t.Errorf("unexpected link TTLs: %s / %s", cfg.LinkTTL, cfg.LinkCacheTTL)
	}
	if cfg.PageSize != 20 {
		t.Errorf("expected page size 20, got %d", cfg.PageSize)
	}
	if cfg.MapCenterLat != 12.5 || cfg.MapCenterLng != 54.0 || cfg.MapZoom != 10 {
		t.Errorf("unexpected map defaults: %v %v %v", cfg.MapCenterLat, cfg.MapCenterLng, cfg.MapZoom)
	}
	if cfg.IsProduction() {
		t.Error("default environment should not be production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", BackendRemote)
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("ALLOWED_EXTENSIONS", " PNG, jpg ,")
	t.Setenv("REMOTE_LINK_TTL", "30m")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	if cfg.StorageBackend != BackendRemote {
		t.Errorf("expected remote backend, got %q", cfg.StorageBackend)
	}
	if cfg.MaxUploadBytes != 1048576 {
		t.Errorf("expected 1 MiB limit, got %d", cfg.MaxUploadBytes)
	}
	if len(cfg.AllowedExtensions) != 2 || cfg.AllowedExtensions[0] != "png" || cfg.AllowedExtensions[1] != "jpg" {
		t.Errorf("extensions should be trimmed and lowercased, got %v", cfg.AllowedExtensions)
	}
	if cfg.LinkTTL != 30*time.Minute {
		t.Errorf("expected 30m link TTL, got %s", cfg.LinkTTL)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "a lot")
	t.Setenv("THUMBNAIL_WIDTH", "wide")
	t.Setenv("REMOTE_LINK_TTL", "soon")

	cfg := Load()

	if cfg.MaxUploadBytes != 16*1024*1024 {
		t.Errorf("malformed limit should fall back to default, got %d", cfg.MaxUploadBytes)
	}
	if cfg.ThumbnailWidth != 200 {
		t.Errorf("malformed width should fall back to default, got %d", cfg.ThumbnailWidth)
	}
	if cfg.LinkTTL != 4*time.Hour {
		t.Errorf("malformed TTL should fall back to default, got %s", cfg.LinkTTL)
	}
}

func TestUploadSubdirectories(t *testing.T) {
	cfg := &Config{UploadDir: filepath.Join("static", "uploads")}

	if cfg.OriginalsDir() != filepath.Join("static", "uploads", "originals") {
		t.Errorf("unexpected originals dir %q", cfg.OriginalsDir())
	}
	if cfg.ThumbnailsDir() != filepath.Join("static", "uploads", "thumbnails") {
		t.Errorf("unexpected thumbnails dir %q", cfg.ThumbnailsDir())
	}
}
