package image

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/enzococca/soqotra-rockart/internal/response"
)

// Handler holds HTTP handlers for image endpoints.
type Handler struct {
	svc      *Service
	maxBytes int64
}

// NewHandler creates a new image Handler. maxBytes bounds the request
// body so oversize uploads are cut off before buffering the whole file.
func NewHandler(svc *Service, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

// Upload godoc
//
//	@Summary		Upload an image
//	@Description	Attach an image to a rock art record. The file is validated, stored on the active backend, and a thumbnail is generated.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int		true	"Record ID"
//	@Param			image	formData	file	true	"Image file (png, jpg, jpeg, gif)"
//	@Success		201		{object}	response.Envelope{data=StoredImage}
//	@Failure		400		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/records/{id}/images [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	recordID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid record id")
		return
	}

	// +4KiB of slack for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+4096)

	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(w, "uploaded file is too large")
			return
		}
		response.BadRequest(w, "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "could not read uploaded file")
		return
	}

	img, err := h.svc.Attach(r.Context(), recordID, header.Filename, data)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, img)
}

// Get godoc
//
//	@Summary		Get image metadata
//	@Description	Returns image metadata with resolved URLs for both variants.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Image ID"
//	@Success		200	{object}	response.Envelope{data=StoredImage}
//	@Failure		404	{object}	response.Envelope
//	@Router			/images/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid image id")
		return
	}

	img, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, img)
}

// VariantURL godoc
//
//	@Summary		Resolve a variant URL
//	@Description	Returns the retrievable URL for one variant of an image. variant is "original" or "thumbnail".
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int		true	"Image ID"
//	@Param			variant	query		string	false	"Variant"	default(original)
//	@Success		200		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Router			/images/{id}/url [get]
func (h *Handler) VariantURL(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid image id")
		return
	}

	variant := Variant(r.URL.Query().Get("variant"))
	if variant == "" {
		variant = VariantOriginal
	}
	if variant != VariantOriginal && variant != VariantThumbnail {
		response.BadRequest(w, "variant must be \"original\" or \"thumbnail\"")
		return
	}

	url, err := h.svc.VariantURL(r.Context(), id, variant)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, map[string]string{"url": url})
}

// Delete godoc
//
//	@Summary		Delete an image
//	@Description	Removes the image row and both stored variants. A backend delete failure is logged but never blocks row removal.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Image ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/images/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid image id")
		return
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, map[string]bool{"deleted": true})
}

// writeError maps gateway errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	var se *StorageError
	switch {
	case errors.As(err, &ve):
		if ve.TooLarge {
			response.PayloadTooLarge(w, ve.Reason)
			return
		}
		response.BadRequest(w, ve.Reason)
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "image not found")
	case errors.As(err, &se):
		response.BadGateway(w, "storage backend error")
	default:
		response.InternalError(w)
	}
}
