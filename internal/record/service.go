package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/enzococca/soqotra-rockart/internal/image"
)

// ErrInvalidInput marks caller-fixable validation failures.
var ErrInvalidInput = errors.New("invalid input")

// Input carries the editable fields of a rock-art record. Date is an
// ISO date string ("2006-01-02"); coordinates must be given as a pair
// or not at all.
type Input struct {
	Site        string   `json:"site"`
	Motif       string   `json:"motif"`
	Panel       *string  `json:"panel"`
	Groups      *string  `json:"groups"`
	Type        *string  `json:"type"`
	Date        *string  `json:"date"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// Page is one page of search results.
type Page struct {
	Records    []*RockArt `json:"records"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// Stats are the dashboard totals.
type Stats struct {
	TotalRecords int64      `json:"totalRecords"`
	TotalImages  int64      `json:"totalImages"`
	Recent       []*RockArt `json:"recentRecords"`
}

// Service contains business logic for catalog records.
type Service struct {
	repo     *Repository
	images   *image.Service
	pageSize int
	log      *zap.Logger
}

// NewService creates a new record Service.
func NewService(repo *Repository, images *image.Service, pageSize int, log *zap.Logger) *Service {
	return &Service{repo: repo, images: images, pageSize: pageSize, log: log}
}

// Create validates the input and inserts a new record.
func (s *Service) Create(ctx context.Context, in Input) (*RockArt, error) {
	r, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	s.log.Info("record created", zap.Int64("id", created.ID), zap.String("site", created.Site))
	return created, nil
}

// Get returns a record together with its images.
func (s *Service) Get(ctx context.Context, id int64) (*RockArt, []*image.StoredImage, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	images, err := s.images.ListByRecord(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return r, images, nil
}

// Update validates the input and overwrites the record.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*RockArt, error) {
	r, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	r.ID = id
	return s.repo.Update(ctx, r)
}

// Delete removes the record, its image rows (FK cascade), and the stored
// objects for every attached image.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.images.RemoveByRecord(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("record deleted", zap.Int64("id", id))
	return nil
}

// List returns one page of records matching query.
func (s *Service) List(ctx context.Context, page int, query string) (*Page, error) {
	if page < 1 {
		page = 1
	}
	records, total, err := s.repo.List(ctx, query, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*RockArt{}
	}

	totalPages := total / int64(s.pageSize)
	if total%int64(s.pageSize) != 0 {
		totalPages++
	}

	return &Page{
		Records: records,
		Pagination: Pagination{
			Page:       page,
			PerPage:    s.pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GeoJSON returns all placeable records as a FeatureCollection.
// withThumbnails controls whether popup thumbnail URLs are resolved,
// which costs one backend call per record.
func (s *Service) GeoJSON(ctx context.Context, withThumbnails bool) (FeatureCollection, error) {
	records, err := s.repo.ListWithCoordinates(ctx)
	if err != nil {
		return FeatureCollection{}, err
	}
	var thumb ThumbnailResolver
	if withThumbnails {
		thumb = func(recordID int64) string {
			return s.images.ThumbnailURLByRecord(ctx, recordID)
		}
	}
	return ToFeatureCollection(records, thumb), nil
}

// Stats returns the dashboard totals.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	totalRecords, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalImages, err := s.images.Count(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.Recent(ctx, 5)
	if err != nil {
		return nil, err
	}
	return &Stats{TotalRecords: totalRecords, TotalImages: totalImages, Recent: recent}, nil
}

// All returns every record ordered by id, for exports.
func (s *Service) All(ctx context.Context) ([]*RockArt, error) {
	return s.repo.ListAll(ctx)
}

// Types lists all type descriptions.
func (s *Service) Types(ctx context.Context) ([]*TypeDescription, error) {
	return s.repo.ListTypes(ctx)
}

// Type fetches one type description by name.
func (s *Service) Type(ctx context.Context, name string) (*TypeDescription, error) {
	return s.repo.GetType(ctx, name)
}

// IsNotFound reports whether the error indicates a missing record.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// fromInput validates in and converts it into a RockArt value.
func (s *Service) fromInput(in Input) (*RockArt, error) {
	if in.Site == "" {
		return nil, fmt.Errorf("%w: site is required", ErrInvalidInput)
	}
	if in.Motif == "" {
		return nil, fmt.Errorf("%w: motif is required", ErrInvalidInput)
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must be provided together", ErrInvalidInput)
	}
	if in.Latitude != nil {
		if *in.Latitude < -90 || *in.Latitude > 90 {
			return nil, fmt.Errorf("%w: latitude out of range", ErrInvalidInput)
		}
		if *in.Longitude < -180 || *in.Longitude > 180 {
			return nil, fmt.Errorf("%w: longitude out of range", ErrInvalidInput)
		}
	}

	r := &RockArt{
		Site:        in.Site,
		Motif:       in.Motif,
		Panel:       in.Panel,
		Groups:      in.Groups,
		Type:        in.Type,
		Description: in.Description,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if in.Date != nil && *in.Date != "" {
		d, err := time.Parse("2006-01-02", *in.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be formatted YYYY-MM-DD", ErrInvalidInput)
		}
		r.Date = &d
	}
	return r, nil
}
