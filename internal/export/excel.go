// Package export renders the catalog into downloadable spreadsheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/enzococca/soqotra-rockart/internal/image"
	"github.com/enzococca/soqotra-rockart/internal/record"
)

// SheetName is the worksheet holding the catalog rows.
const SheetName = "Rock Art Records"

var headers = []string{"ID", "Site", "Motif", "Panel", "Groups", "Type", "Date", "Description", "Thumbnail"}

var columnWidths = map[string]float64{
	"A": 8, "B": 15, "C": 15, "D": 12, "E": 12, "F": 20, "G": 12, "H": 40, "I": 30,
}

// ThumbnailFetcher returns the thumbnail bytes for an image, or nil when
// no embeddable thumbnail is available.
type ThumbnailFetcher func(img *image.StoredImage) []byte

// BuildWorkbook renders records into an xlsx workbook: one row per image
// (records without images get a single bare row), with the thumbnail
// embedded in the last column where the fetcher can supply it.
func BuildWorkbook(records []*record.RockArt, imagesByRecord map[int64][]*image.StoredImage, thumb ThumbnailFetcher) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	textStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("text style: %w", err)
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		_ = f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	row := 2
	for _, rec := range records {
		images := imagesByRecord[rec.ID]
		if len(images) == 0 {
			if err := writeRecordRow(f, row, rec, textStyle); err != nil {
				return nil, err
			}
			row++
			continue
		}

		for _, img := range images {
			if err := writeRecordRow(f, row, rec, textStyle); err != nil {
				return nil, err
			}

			if thumb != nil {
				if data := thumb(img); len(data) > 0 {
					cell, _ := excelize.CoordinatesToCellName(9, row)
					_ = f.SetRowHeight(SheetName, row, 115)
					if err := f.AddPictureFromBytes(SheetName, cell, &excelize.Picture{
						Extension: ".jpg",
						File:      data,
						Format:    &excelize.GraphicOptions{ScaleX: 0.75, ScaleY: 0.75},
					}); err != nil {
						return nil, fmt.Errorf("embed thumbnail: %w", err)
					}
				}
			}
			row++
		}
	}

	return f, nil
}

func writeRecordRow(f *excelize.File, row int, rec *record.RockArt, textStyle int) error {
	values := []any{
		rec.ID,
		rec.Site,
		rec.Motif,
		deref(rec.Panel),
		deref(rec.Groups),
		deref(rec.Type),
		"",
		deref(rec.Description),
	}
	if rec.Date != nil {
		values[6] = rec.Date.Format("2006-01-02")
	}

	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return fmt.Errorf("write cell %s: %w", cell, err)
		}
	}
	descCell, _ := excelize.CoordinatesToCellName(8, row)
	_ = f.SetCellStyle(SheetName, descCell, descCell, textStyle)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
