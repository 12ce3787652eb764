package record

// GeoJSON feature types for the map feeds.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// ThumbnailResolver supplies the thumbnail URL shown in map popups, or ""
// when a record has none.
type ThumbnailResolver func(recordID int64) string

// ToFeatureCollection converts records into a GeoJSON FeatureCollection.
// Records without coordinates are skipped. Coordinates follow the GeoJSON
// order: longitude first.
func ToFeatureCollection(records []*RockArt, thumb ThumbnailResolver) FeatureCollection {
	features := make([]Feature, 0, len(records))
	for _, r := range records {
		if !r.HasCoordinates() {
			continue
		}

		props := map[string]any{
			"id":          r.ID,
			"site":        r.Site,
			"motif":       r.Motif,
			"panel":       r.Panel,
			"groups":      r.Groups,
			"type":        r.Type,
			"description": r.Description,
			"imageCount":  r.ImageCount,
		}
		if r.Date != nil {
			props["date"] = r.Date.Format("2006-01-02")
		}
		if thumb != nil {
			if url := thumb(r.ID); url != "" {
				props["thumbnail"] = url
			}
		}

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{*r.Longitude, *r.Latitude},
			},
			Properties: props,
		})
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
