package record

import (
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestToFeatureCollectionSkipsUnplacedRecords(t *testing.T) {
	records := []*RockArt{
		{ID: 1, Site: "Eriosh", Motif: "camel", Latitude: ptr(12.61), Longitude: ptr(53.99)},
		{ID: 2, Site: "Dahaisi", Motif: "boat"},
		{ID: 3, Site: "Hoq", Motif: "inscription", Latitude: ptr(12.58), Longitude: ptr(54.35)},
	}

	fc := ToFeatureCollection(records, nil)

	if fc.Type != "FeatureCollection" {
		t.Errorf("expected FeatureCollection type, got %q", fc.Type)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties["id"] != int64(1) {
		t.Errorf("expected first feature to be record 1, got %v", fc.Features[0].Properties["id"])
	}
}

func TestToFeatureCollectionLongitudeFirst(t *testing.T) {
	records := []*RockArt{
		{ID: 1, Site: "Eriosh", Motif: "camel", Latitude: ptr(12.5), Longitude: ptr(54.0)},
	}

	fc := ToFeatureCollection(records, nil)

	geom := fc.Features[0].Geometry
	if geom.Type != "Point" {
		t.Errorf("expected Point geometry, got %q", geom.Type)
	}
	if geom.Coordinates[0] != 54.0 || geom.Coordinates[1] != 12.5 {
		t.Errorf("expected [lng lat] order, got %v", geom.Coordinates)
	}
}

func TestToFeatureCollectionProperties(t *testing.T) {
	date := time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC)
	records := []*RockArt{
		{
			ID:         4,
			Site:       "Eriosh",
			Motif:      "feet",
			Panel:      ptr("P-12"),
			Date:       &date,
			Latitude:   ptr(12.6),
			Longitude:  ptr(54.0),
			ImageCount: 3,
		},
	}

	fc := ToFeatureCollection(records, func(recordID int64) string {
		if recordID != 4 {
			t.Errorf("resolver called with unexpected record id %d", recordID)
		}
		return "/static/uploads/thumbnails/thumb_4_x.jpg"
	})

	props := fc.Features[0].Properties
	if props["site"] != "Eriosh" || props["motif"] != "feet" {
		t.Errorf("unexpected site/motif properties: %v", props)
	}
	if props["date"] != "2023-11-05" {
		t.Errorf("expected ISO date, got %v", props["date"])
	}
	if props["thumbnail"] != "/static/uploads/thumbnails/thumb_4_x.jpg" {
		t.Errorf("expected thumbnail property, got %v", props["thumbnail"])
	}
	if props["imageCount"] != int64(3) {
		t.Errorf("expected image count 3, got %v", props["imageCount"])
	}
}

func TestToFeatureCollectionOmitsEmptyThumbnail(t *testing.T) {
	records := []*RockArt{
		{ID: 5, Site: "Hoq", Motif: "ship", Latitude: ptr(12.58), Longitude: ptr(54.35)},
	}

	fc := ToFeatureCollection(records, func(int64) string { return "" })

	if _, ok := fc.Features[0].Properties["thumbnail"]; ok {
		t.Error("records without thumbnails must not carry a thumbnail property")
	}
}
