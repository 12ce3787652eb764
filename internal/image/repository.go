package image

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles image metadata persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new image Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert stores the metadata row for a freshly uploaded image and fills
// in its id and upload timestamp.
func (r *Repository) Insert(ctx context.Context, img *StoredImage) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO images (record_id, image_key, thumbnail_key, original_filename, backend)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, uploaded_at`,
		img.RecordID, img.ImageKey, img.ThumbnailKey, img.OriginalFilename, img.Backend,
	).Scan(&img.ID, &img.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// GetByID fetches a single image row.
func (r *Repository) GetByID(ctx context.Context, id int64) (*StoredImage, error) {
	img := &StoredImage{}
	err := r.db.QueryRow(ctx,
		`SELECT id, record_id, image_key, thumbnail_key, original_filename, backend, uploaded_at
		 FROM images WHERE id = $1`,
		id,
	).Scan(&img.ID, &img.RecordID, &img.ImageKey, &img.ThumbnailKey,
		&img.OriginalFilename, &img.Backend, &img.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image by id: %w", err)
	}
	return img, nil
}

// ListByRecord returns all images attached to a record, oldest first.
func (r *Repository) ListByRecord(ctx context.Context, recordID int64) ([]*StoredImage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, record_id, image_key, thumbnail_key, original_filename, backend, uploaded_at
		 FROM images WHERE record_id = $1
		 ORDER BY uploaded_at`,
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []*StoredImage
	for rows.Next() {
		img := &StoredImage{}
		if err := rows.Scan(&img.ID, &img.RecordID, &img.ImageKey, &img.ThumbnailKey,
			&img.OriginalFilename, &img.Backend, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// Delete removes the metadata row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of stored images.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM images`).Scan(&n)
	return n, err
}
