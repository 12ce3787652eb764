package image

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service glues the storage gateway to image metadata persistence.
type Service struct {
	gateway *Gateway
	repo    *Repository
	log     *zap.Logger
}

// NewService creates a new image Service.
func NewService(gateway *Gateway, repo *Repository, log *zap.Logger) *Service {
	return &Service{gateway: gateway, repo: repo, log: log}
}

// Attach stores the uploaded bytes on the active backend and records the
// image against the rock-art record. Nothing is written to the database
// until the original is safely stored.
func (s *Service) Attach(ctx context.Context, recordID int64, filename string, data []byte) (*StoredImage, error) {
	img, err := s.gateway.Store(ctx, recordID, filename, data)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, img); err != nil {
		// The object is stored but the row failed; remove the bytes so
		// no unreferenced uploads accumulate.
		if derr := s.gateway.Delete(ctx, img); derr != nil {
			s.log.Warn("orphan cleanup failed after insert error",
				zap.String("key", img.ImageKey), zap.Error(derr))
		}
		return nil, fmt.Errorf("record image: %w", err)
	}

	s.resolveURLs(ctx, img)
	s.log.Info("image stored",
		zap.Int64("record_id", recordID),
		zap.String("key", img.ImageKey),
		zap.String("backend", img.Backend),
		zap.Bool("thumbnail", img.HasThumbnail()))
	return img, nil
}

// Get returns one image with its variant URLs resolved.
func (s *Service) Get(ctx context.Context, id int64) (*StoredImage, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveURLs(ctx, img)
	return img, nil
}

// VariantURL resolves a single variant of a stored image.
func (s *Service) VariantURL(ctx context.Context, id int64, variant Variant) (string, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.gateway.URL(ctx, img, variant)
}

// ListByRecord returns a record's images with URLs resolved.
func (s *Service) ListByRecord(ctx context.Context, recordID int64) ([]*StoredImage, error) {
	images, err := s.repo.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		s.resolveURLs(ctx, img)
	}
	return images, nil
}

// Remove deletes the image row and its stored objects. A backend delete
// failure never blocks row removal: the catalog record is the source of
// truth and an orphaned object is the lesser harm.
func (s *Service) Remove(ctx context.Context, id int64) error {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.gateway.Delete(ctx, img); err != nil {
		s.log.Warn("backend delete failed, removing row anyway",
			zap.Int64("image_id", id),
			zap.String("key", img.ImageKey),
			zap.Error(err))
	}

	return s.repo.Delete(ctx, id)
}

// RemoveByRecord deletes every image attached to a record. Called by the
// record-deletion flow before the record row (and, via cascade, the image
// rows) disappears.
func (s *Service) RemoveByRecord(ctx context.Context, recordID int64) error {
	images, err := s.repo.ListByRecord(ctx, recordID)
	if err != nil {
		return err
	}
	for _, img := range images {
		if err := s.gateway.Delete(ctx, img); err != nil {
			s.log.Warn("backend delete failed during record removal",
				zap.Int64("image_id", img.ID),
				zap.String("key", img.ImageKey),
				zap.Error(err))
		}
	}
	return nil
}

// Count returns the total number of stored images.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// ThumbnailURLByRecord returns the thumbnail URL of the record's first
// image, or "" when the record has no usable thumbnail. Used by the map
// feeds.
func (s *Service) ThumbnailURLByRecord(ctx context.Context, recordID int64) string {
	images, err := s.repo.ListByRecord(ctx, recordID)
	if err != nil || len(images) == 0 {
		return ""
	}
	url, err := s.gateway.URL(ctx, images[0], VariantThumbnail)
	if err != nil {
		return ""
	}
	return url
}

// resolveURLs fills the outbound URL fields, leaving a variant's URL
// empty when it cannot be resolved.
func (s *Service) resolveURLs(ctx context.Context, img *StoredImage) {
	if url, err := s.gateway.URL(ctx, img, VariantOriginal); err == nil {
		img.URL = url
	} else {
		s.log.Warn("could not resolve original url",
			zap.Int64("image_id", img.ID), zap.Error(err))
	}
	if url, err := s.gateway.URL(ctx, img, VariantThumbnail); err == nil {
		img.ThumbnailURL = url
	}
}
