package export

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	imagestore "github.com/enzococca/soqotra-rockart/internal/image"
	"github.com/enzococca/soqotra-rockart/internal/record"
)

func strPtr(s string) *string { return &s }

func testThumbnail(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.NRGBA{R: 180, G: 90, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestBuildWorkbookHeader(t *testing.T) {
	f, err := BuildWorkbook(nil, nil, nil)
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(SheetName); idx < 0 {
		t.Fatalf("sheet %q should exist", SheetName)
	}

	want := map[string]string{"A1": "ID", "B1": "Site", "C1": "Motif", "G1": "Date", "I1": "Thumbnail"}
	for cell, expected := range want {
		got, err := f.GetCellValue(SheetName, cell)
		if err != nil {
			t.Fatalf("GetCellValue %s: %v", cell, err)
		}
		if got != expected {
			t.Errorf("cell %s: expected %q, got %q", cell, expected, got)
		}
	}
}

func TestBuildWorkbookOneRowPerImage(t *testing.T) {
	date := time.Date(2021, 6, 2, 0, 0, 0, 0, time.UTC)
	records := []*record.RockArt{
		{ID: 1, Site: "Eriosh", Motif: "camel", Panel: strPtr("P-3"), Date: &date},
		{ID: 2, Site: "Hoq", Motif: "ship"},
	}
	thumbKey := "thumbnails/thumb_1_a.jpg"
	imagesByRecord := map[int64][]*imagestore.StoredImage{
		1: {
			{ID: 10, RecordID: 1, ImageKey: "originals/1_a.jpg", ThumbnailKey: &thumbKey},
			{ID: 11, RecordID: 1, ImageKey: "originals/1_b.jpg"},
		},
	}

	f, err := BuildWorkbook(records, imagesByRecord, nil)
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()

	// Record 1 has two images so it occupies rows 2-3; record 2 has none
	// and gets a single bare row 4.
	for _, row := range []string{"2", "3"} {
		site, _ := f.GetCellValue(SheetName, "B"+row)
		if site != "Eriosh" {
			t.Errorf("row %s: expected site Eriosh, got %q", row, site)
		}
		d, _ := f.GetCellValue(SheetName, "G"+row)
		if d != "2021-06-02" {
			t.Errorf("row %s: expected formatted date, got %q", row, d)
		}
	}
	site, _ := f.GetCellValue(SheetName, "B4")
	if site != "Hoq" {
		t.Errorf("row 4: expected site Hoq, got %q", site)
	}
	if empty, _ := f.GetCellValue(SheetName, "B5"); empty != "" {
		t.Errorf("row 5 should be empty, got %q", empty)
	}
}

func TestBuildWorkbookEmbedsThumbnails(t *testing.T) {
	records := []*record.RockArt{{ID: 1, Site: "Eriosh", Motif: "camel"}}
	thumbKey := "thumbnails/thumb_1_a.jpg"
	imagesByRecord := map[int64][]*imagestore.StoredImage{
		1: {{ID: 10, RecordID: 1, ImageKey: "originals/1_a.jpg", ThumbnailKey: &thumbKey}},
	}
	thumbBytes := testThumbnail(t)

	var fetched []*imagestore.StoredImage
	f, err := BuildWorkbook(records, imagesByRecord, func(img *imagestore.StoredImage) []byte {
		fetched = append(fetched, img)
		return thumbBytes
	})
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()

	if len(fetched) != 1 || fetched[0].ID != 10 {
		t.Fatalf("expected the fetcher to be called once for image 10, got %v", fetched)
	}

	pics, err := f.GetPictures(SheetName, "I2")
	if err != nil {
		t.Fatalf("GetPictures failed: %v", err)
	}
	if len(pics) != 1 {
		t.Fatalf("expected one embedded picture in I2, got %d", len(pics))
	}

	height, err := f.GetRowHeight(SheetName, 2)
	if err != nil {
		t.Fatalf("GetRowHeight failed: %v", err)
	}
	if height != 115 {
		t.Errorf("expected row height 115 for picture rows, got %v", height)
	}
}

func TestBuildWorkbookSkipsMissingThumbnails(t *testing.T) {
	records := []*record.RockArt{{ID: 1, Site: "Eriosh", Motif: "camel"}}
	imagesByRecord := map[int64][]*imagestore.StoredImage{
		1: {{ID: 10, RecordID: 1, ImageKey: "originals/1_a.jpg"}},
	}

	f, err := BuildWorkbook(records, imagesByRecord, func(*imagestore.StoredImage) []byte { return nil })
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}
	defer f.Close()

	pics, err := f.GetPictures(SheetName, "I2")
	if err != nil {
		t.Fatalf("GetPictures failed: %v", err)
	}
	if len(pics) != 0 {
		t.Errorf("expected no picture when the fetcher returns nil, got %d", len(pics))
	}
}
