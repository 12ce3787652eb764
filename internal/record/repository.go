// Package record manages rock-art catalog records and their persistence.
package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RockArt is one documented rock-art panel or motif.
type RockArt struct {
	ID          int64      `json:"id"`
	Site        string     `json:"site"`
	Motif       string     `json:"motif"`
	Panel       *string    `json:"panel,omitempty"`
	Groups      *string    `json:"groups,omitempty"`
	Type        *string    `json:"type,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Description *string    `json:"description,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ImageCount  int64      `json:"imageCount"`
}

// HasCoordinates reports whether the record can be placed on the map.
func (r *RockArt) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// TypeDescription documents one rock-art type.
type TypeDescription struct {
	ID          int64   `json:"id"`
	TypeName    string  `json:"typeName"`
	Description *string `json:"description,omitempty"`
}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

const recordColumns = `r.id, r.site, r.motif, r.panel, r.groups, r.type, r.date,
	r.description, r.latitude, r.longitude, r.created_at, r.updated_at,
	(SELECT COUNT(*) FROM images i WHERE i.record_id = r.id)`

// Repository handles all rock-art database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new record Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanRecord(row pgx.Row) (*RockArt, error) {
	r := &RockArt{}
	err := row.Scan(&r.ID, &r.Site, &r.Motif, &r.Panel, &r.Groups, &r.Type, &r.Date,
		&r.Description, &r.Latitude, &r.Longitude, &r.CreatedAt, &r.UpdatedAt, &r.ImageCount)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Create inserts a new record and returns it fully populated.
func (repo *Repository) Create(ctx context.Context, r *RockArt) (*RockArt, error) {
	row := repo.db.QueryRow(ctx,
		`INSERT INTO rockart (site, motif, panel, groups, type, date, description, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, site, motif, panel, groups, type, date, description,
		           latitude, longitude, created_at, updated_at, 0`,
		r.Site, r.Motif, r.Panel, r.Groups, r.Type, r.Date, r.Description, r.Latitude, r.Longitude,
	)
	created, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return created, nil
}

// GetByID fetches one record.
func (repo *Repository) GetByID(ctx context.Context, id int64) (*RockArt, error) {
	row := repo.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM rockart r WHERE r.id = $1`, id)
	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record by id: %w", err)
	}
	return r, nil
}

// Update overwrites all editable fields of the record.
func (repo *Repository) Update(ctx context.Context, r *RockArt) (*RockArt, error) {
	row := repo.db.QueryRow(ctx,
		`UPDATE rockart SET site = $2, motif = $3, panel = $4, groups = $5, type = $6,
		        date = $7, description = $8, latitude = $9, longitude = $10, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, site, motif, panel, groups, type, date, description,
		           latitude, longitude, created_at, updated_at,
		           (SELECT COUNT(*) FROM images i WHERE i.record_id = rockart.id)`,
		r.ID, r.Site, r.Motif, r.Panel, r.Groups, r.Type, r.Date, r.Description, r.Latitude, r.Longitude,
	)
	updated, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return updated, nil
}

// Delete removes the record; image rows go with it via the FK cascade.
func (repo *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := repo.db.Exec(ctx, `DELETE FROM rockart WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of records, newest first, optionally filtered by
// a search term matched against the text columns. It also returns the
// total match count for pagination.
func (repo *Repository) List(ctx context.Context, query string, limit, offset int) ([]*RockArt, int64, error) {
	where := ``
	args := []any{limit, offset}
	if query != "" {
		where = `WHERE r.site ILIKE $3 OR r.motif ILIKE $3 OR r.panel ILIKE $3
		         OR r.groups ILIKE $3 OR r.type ILIKE $3 OR r.description ILIKE $3`
		args = append(args, "%"+query+"%")
	}

	rows, err := repo.db.Query(ctx,
		`SELECT `+recordColumns+` FROM rockart r `+where+`
		 ORDER BY r.created_at DESC
		 LIMIT $1 OFFSET $2`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*RockArt
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	countWhere := ``
	var countArgs []any
	if query != "" {
		countWhere = `WHERE r.site ILIKE $1 OR r.motif ILIKE $1 OR r.panel ILIKE $1
		              OR r.groups ILIKE $1 OR r.type ILIKE $1 OR r.description ILIKE $1`
		countArgs = append(countArgs, "%"+query+"%")
	}
	if err := repo.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM rockart r `+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	return records, total, nil
}

// ListWithCoordinates returns every record that can be placed on the map.
func (repo *Repository) ListWithCoordinates(ctx context.Context) ([]*RockArt, error) {
	rows, err := repo.db.Query(ctx,
		`SELECT `+recordColumns+` FROM rockart r
		 WHERE r.latitude IS NOT NULL AND r.longitude IS NOT NULL
		 ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("list records with coordinates: %w", err)
	}
	defer rows.Close()

	var records []*RockArt
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListAll returns every record ordered by id, for the Excel export.
func (repo *Repository) ListAll(ctx context.Context) ([]*RockArt, error) {
	rows, err := repo.db.Query(ctx,
		`SELECT `+recordColumns+` FROM rockart r ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("list all records: %w", err)
	}
	defer rows.Close()

	var records []*RockArt
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Recent returns the n most recently created records.
func (repo *Repository) Recent(ctx context.Context, n int) ([]*RockArt, error) {
	rows, err := repo.db.Query(ctx,
		`SELECT `+recordColumns+` FROM rockart r
		 ORDER BY r.created_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("recent records: %w", err)
	}
	defer rows.Close()

	var records []*RockArt
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the total number of records.
func (repo *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := repo.db.QueryRow(ctx, `SELECT COUNT(*) FROM rockart`).Scan(&n)
	return n, err
}

// ListTypes returns all type descriptions ordered by name.
func (repo *Repository) ListTypes(ctx context.Context) ([]*TypeDescription, error) {
	rows, err := repo.db.Query(ctx,
		`SELECT id, type_name, description FROM type_descriptions ORDER BY type_name`)
	if err != nil {
		return nil, fmt.Errorf("list types: %w", err)
	}
	defer rows.Close()

	var types []*TypeDescription
	for rows.Next() {
		t := &TypeDescription{}
		if err := rows.Scan(&t.ID, &t.TypeName, &t.Description); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// GetType fetches one type description by name.
func (repo *Repository) GetType(ctx context.Context, name string) (*TypeDescription, error) {
	t := &TypeDescription{}
	err := repo.db.QueryRow(ctx,
		`SELECT id, type_name, description FROM type_descriptions WHERE type_name = $1`,
		name,
	).Scan(&t.ID, &t.TypeName, &t.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get type: %w", err)
	}
	return t, nil
}
