package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"mime"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/enzococca/soqotra-rockart/internal/config"
	"github.com/enzococca/soqotra-rockart/internal/storage"
)

const (
	originalPrefix  = "originals/"
	thumbnailPrefix = "thumbnails/"
	jpegQuality     = 85
)

// Gateway validates uploads, derives thumbnails, and moves bytes in and
// out of storage backends. It holds no state across calls beyond the
// immutable policy and the backend handles themselves.
type Gateway struct {
	active   storage.Backend
	backends map[string]storage.Backend

	maxBytes    int64
	thumbWidth  int
	thumbHeight int
	allowedExts map[string]bool

	log *zap.Logger
}

// NewGateway builds a Gateway writing new uploads to active. Any extra
// backends are registered for resolving images tagged with them, so a
// catalog that switched backends can still serve its older uploads.
func NewGateway(cfg *config.Config, active storage.Backend, log *zap.Logger, extra ...storage.Backend) *Gateway {
	exts := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, e := range cfg.AllowedExtensions {
		exts[e] = true
	}

	backends := map[string]storage.Backend{active.Tag(): active}
	for _, b := range extra {
		backends[b.Tag()] = b
	}

	return &Gateway{
		active:      active,
		backends:    backends,
		maxBytes:    cfg.MaxUploadBytes,
		thumbWidth:  cfg.ThumbnailWidth,
		thumbHeight: cfg.ThumbnailHeight,
		allowedExts: exts,
		log:         log,
	}
}

// Store validates data, writes the original under a collision-resistant
// key, and writes an aspect-preserving JPEG thumbnail next to it. A
// thumbnail that cannot be produced or written is logged and left unset;
// the original alone still counts as a successful store. A failed write
// of the original aborts with a StorageError and persists nothing.
func (g *Gateway) Store(ctx context.Context, recordID int64, filename string, data []byte) (*StoredImage, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" || !g.allowedExts[ext] {
		return nil, &ValidationError{Reason: fmt.Sprintf("file extension %q is not allowed", ext)}
	}
	if int64(len(data)) > g.maxBytes {
		return nil, &ValidationError{
			Reason:   fmt.Sprintf("file exceeds the %d byte upload limit", g.maxBytes),
			TooLarge: true,
		}
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, &ValidationError{Reason: "file is not a decodable image"}
	}

	// Keys are derived from the record id plus a fresh uuid, never from
	// the client-supplied name, so concurrent uploads cannot collide and
	// hostile filenames cannot traverse paths.
	base := fmt.Sprintf("%d_%s", recordID, uuid.New().String())
	imageKey := originalPrefix + base + "." + ext

	contentType := mime.TypeByExtension("." + ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := g.active.Upload(ctx, imageKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, &StorageError{Op: "upload original", Err: err}
	}

	stored := &StoredImage{
		RecordID:         recordID,
		ImageKey:         imageKey,
		OriginalFilename: filepath.Base(filename),
		Backend:          g.active.Tag(),
	}

	thumbKey := thumbnailPrefix + "thumb_" + base + ".jpg"
	if thumb, err := g.renderThumbnail(data); err != nil {
		g.log.Warn("thumbnail generation failed, keeping original only",
			zap.String("key", imageKey), zap.Error(err))
	} else if err := g.active.Upload(ctx, thumbKey, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg"); err != nil {
		g.log.Warn("thumbnail upload failed, keeping original only",
			zap.String("key", thumbKey), zap.Error(err))
	} else {
		stored.ThumbnailKey = &thumbKey
	}

	return stored, nil
}

// URL resolves the requested variant to a retrievable URL through the
// backend the image was stored on.
func (g *Gateway) URL(ctx context.Context, img *StoredImage, variant Variant) (string, error) {
	var key string
	switch variant {
	case VariantOriginal:
		key = img.ImageKey
	case VariantThumbnail:
		if !img.HasThumbnail() {
			return "", ErrNotFound
		}
		key = *img.ThumbnailKey
	default:
		return "", fmt.Errorf("unknown variant %q", variant)
	}

	backend, err := g.resolve(img.Backend)
	if err != nil {
		return "", err
	}

	url, err := backend.Link(ctx, key)
	if err != nil {
		if err == storage.ErrNotExist {
			return "", ErrNotFound
		}
		return "", &StorageError{Op: "link", Err: err}
	}
	return url, nil
}

// Delete removes both variants from the image's backend. The catalog row
// is the source of truth: a failed object delete is reported so the
// caller can log it, but callers are expected to drop the row anyway and
// tolerate the orphaned object.
func (g *Gateway) Delete(ctx context.Context, img *StoredImage) error {
	backend, err := g.resolve(img.Backend)
	if err != nil {
		return err
	}

	if err := backend.Delete(ctx, img.ImageKey); err != nil {
		return &StorageError{Op: "delete original", Err: err}
	}
	if img.HasThumbnail() {
		if err := backend.Delete(ctx, *img.ThumbnailKey); err != nil {
			return &StorageError{Op: "delete thumbnail", Err: err}
		}
	}
	return nil
}

func (g *Gateway) resolve(tag string) (storage.Backend, error) {
	b, ok := g.backends[tag]
	if !ok {
		return nil, &StorageError{Op: "resolve backend", Err: fmt.Errorf("backend %q is not configured", tag)}
	}
	return b, nil
}

// renderThumbnail decodes data fully and scales it to fit the configured
// bounding box, preserving aspect ratio and never upscaling, then encodes
// it as JPEG. Transparency is flattened onto white, matching how the
// catalog's thumbnails have always been produced.
func (g *Gateway) renderThumbnail(data []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	fitted := imaging.Fit(src, g.thumbWidth, g.thumbHeight, imaging.Lanczos)
	flat := imaging.New(fitted.Bounds().Dx(), fitted.Bounds().Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	flat = imaging.Overlay(flat, fitted, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
