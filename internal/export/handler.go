package export

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/enzococca/soqotra-rockart/internal/config"
	"github.com/enzococca/soqotra-rockart/internal/image"
	"github.com/enzococca/soqotra-rockart/internal/record"
	"github.com/enzococca/soqotra-rockart/internal/response"
)

// Handler serves catalog exports.
type Handler struct {
	records *record.Service
	images  *image.Service
	thumbs  ThumbnailFetcher
	log     *zap.Logger
}

// NewHandler creates a new export Handler. Thumbnails are embedded only
// when the active backend keeps files on local disk; with a remote
// backend the spreadsheet carries the catalog data without pictures,
// matching how the export has always behaved.
func NewHandler(records *record.Service, images *image.Service, cfg *config.Config, log *zap.Logger) *Handler {
	var thumbs ThumbnailFetcher
	if cfg.StorageBackend == config.BackendLocal {
		thumbs = localThumbnailFetcher(cfg.UploadDir, log)
	}
	return &Handler{records: records, images: images, thumbs: thumbs, log: log}
}

// Excel godoc
//
//	@Summary		Export the catalog to Excel
//	@Description	Downloads an xlsx workbook with one row per image and embedded thumbnails where available.
//	@Tags			export
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Security		BearerAuth
//	@Success		200	{file}		binary
//	@Failure		500	{object}	response.Envelope
//	@Router			/export/excel [get]
func (h *Handler) Excel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.records.All(ctx)
	if err != nil {
		response.InternalError(w)
		return
	}

	imagesByRecord := make(map[int64][]*image.StoredImage, len(records))
	for _, rec := range records {
		if rec.ImageCount == 0 {
			continue
		}
		images, err := h.images.ListByRecord(ctx, rec.ID)
		if err != nil {
			response.InternalError(w)
			return
		}
		imagesByRecord[rec.ID] = images
	}

	f, err := BuildWorkbook(records, imagesByRecord, h.thumbs)
	if err != nil {
		h.log.Error("excel export failed", zap.Error(err))
		response.InternalError(w)
		return
	}

	filename := fmt.Sprintf("rockart_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := f.WriteTo(w); err != nil {
		h.log.Error("excel write failed", zap.Error(err))
	}
}

// localThumbnailFetcher reads thumbnail bytes straight from the upload
// tree. Missing or unreadable thumbnails are skipped, never fatal.
func localThumbnailFetcher(uploadDir string, log *zap.Logger) ThumbnailFetcher {
	return func(img *image.StoredImage) []byte {
		if !img.HasThumbnail() {
			return nil
		}
		data, err := os.ReadFile(filepath.Join(uploadDir, filepath.FromSlash(*img.ThumbnailKey)))
		if err != nil {
			log.Warn("skipping unreadable thumbnail",
				zap.String("key", *img.ThumbnailKey), zap.Error(err))
			return nil
		}
		return data
	}
}
