// Package image implements the storage gateway for catalog photographs:
// upload validation, thumbnail generation, and retrieval/deletion against
// the configured storage backend, plus persistence of image metadata.
package image

import (
	"errors"
	"fmt"
	"time"
)

// Variant selects one of the two artifacts tracked per uploaded image.
type Variant string

const (
	VariantOriginal  Variant = "original"
	VariantThumbnail Variant = "thumbnail"
)

// StoredImage is one uploaded photograph tied to a rock-art record.
// The backend tag is fixed at creation: retrieval and deletion always go
// to the backend the bytes were written to, regardless of what the
// configuration selects for new uploads.
type StoredImage struct {
	ID               int64     `json:"id"`
	RecordID         int64     `json:"recordId"`
	ImageKey         string    `json:"-"`
	ThumbnailKey     *string   `json:"-"`
	OriginalFilename string    `json:"originalFilename"`
	Backend          string    `json:"backend"`
	UploadedAt       time.Time `json:"uploadedAt"`

	// Resolved on the way out, never persisted.
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// HasThumbnail reports whether thumbnail generation succeeded at upload time.
func (s *StoredImage) HasThumbnail() bool {
	return s.ThumbnailKey != nil && *s.ThumbnailKey != ""
}

// ErrNotFound is returned when an image row or a requested variant does
// not exist.
var ErrNotFound = errors.New("image not found")

// ValidationError rejects caller input before anything is written:
// bad extension, oversize payload, or bytes that do not decode as a
// raster image. Always fixable by resubmitting corrected input.
type ValidationError struct {
	Reason string
	// TooLarge marks size-limit rejections so the HTTP layer can answer 413.
	TooLarge bool
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StorageError reports a failed backend operation. Writes surfacing this
// error persisted nothing; deletes surfacing it may leave an orphaned
// object behind, which callers tolerate.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
