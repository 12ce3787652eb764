package record

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/enzococca/soqotra-rockart/internal/config"
	"github.com/enzococca/soqotra-rockart/internal/image"
	"github.com/enzococca/soqotra-rockart/internal/response"
)

// Handler holds HTTP handlers for record endpoints.
type Handler struct {
	svc *Service
	cfg *config.Config
}

// NewHandler creates a new record Handler.
func NewHandler(svc *Service, cfg *config.Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

type recordDetail struct {
	*RockArt
	Images []*image.StoredImage `json:"images"`
}

// List godoc
//
//	@Summary		List records
//	@Description	Paginated rock art records, newest first. q searches site, motif, panel, groups, type, and description.
//	@Tags			records
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page	query		int		false	"Page number"	default(1)
//	@Param			q		query		string	false	"Search term"
//	@Success		200		{object}	response.Envelope{data=Page}
//	@Router			/records [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	query := r.URL.Query().Get("q")

	result, err := h.svc.List(r.Context(), page, query)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, result)
}

// Create godoc
//
//	@Summary		Create a record
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		Input	true	"Record fields"
//	@Success		201		{object}	response.Envelope{data=RockArt}
//	@Failure		400		{object}	response.Envelope
//	@Router			/records [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	created, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, created)
}

// Get godoc
//
//	@Summary		Get a record
//	@Description	Returns the record together with its images and their resolved URLs.
//	@Tags			records
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Record ID"
//	@Success		200	{object}	response.Envelope{data=recordDetail}
//	@Failure		404	{object}	response.Envelope
//	@Router			/records/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid record id")
		return
	}

	rec, images, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if images == nil {
		images = []*image.StoredImage{}
	}
	response.OK(w, recordDetail{RockArt: rec, Images: images})
}

// Update godoc
//
//	@Summary		Update a record
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int		true	"Record ID"
//	@Param			request	body		Input	true	"Record fields"
//	@Success		200		{object}	response.Envelope{data=RockArt}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Router			/records/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid record id")
		return
	}

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	updated, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, updated)
}

// Delete godoc
//
//	@Summary		Delete a record
//	@Description	Removes the record, its image metadata, and the stored image objects.
//	@Tags			records
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Record ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/records/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid record id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, map[string]bool{"deleted": true})
}

// GeoJSON godoc
//
//	@Summary		Records as GeoJSON
//	@Description	FeatureCollection of all records having coordinates, with popup thumbnails.
//	@Tags			map
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	FeatureCollection
//	@Router			/records/geojson [get]
func (h *Handler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	fc, err := h.svc.GeoJSON(r.Context(), true)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.JSON(w, http.StatusOK, fc)
}

// PublicPoints godoc
//
//	@Summary		Public map points
//	@Description	GeoJSON points for the public viewer. No authentication, no thumbnails.
//	@Tags			map
//	@Produce		json
//	@Success		200	{object}	FeatureCollection
//	@Router			/public/points [get]
func (h *Handler) PublicPoints(w http.ResponseWriter, r *http.Request) {
	fc, err := h.svc.GeoJSON(r.Context(), false)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.JSON(w, http.StatusOK, fc)
}

// MapConfig godoc
//
//	@Summary		Map configuration
//	@Description	Default center and zoom for map clients.
//	@Tags			map
//	@Produce		json
//	@Success		200	{object}	response.Envelope
//	@Router			/map/config [get]
func (h *Handler) MapConfig(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"center": [2]float64{h.cfg.MapCenterLat, h.cfg.MapCenterLng},
		"zoom":   h.cfg.MapZoom,
	})
}

// Stats godoc
//
//	@Summary		Dashboard statistics
//	@Tags			records
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Stats}
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}

// ListTypes godoc
//
//	@Summary		List type descriptions
//	@Tags			types
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]TypeDescription}
//	@Router			/types [get]
func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.Types(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	if types == nil {
		types = []*TypeDescription{}
	}
	response.OK(w, types)
}

// GetType godoc
//
//	@Summary		Get a type description
//	@Tags			types
//	@Produce		json
//	@Security		BearerAuth
//	@Param			name	path		string	true	"Type name"
//	@Success		200		{object}	response.Envelope{data=TypeDescription}
//	@Failure		404		{object}	response.Envelope
//	@Router			/types/{name} [get]
func (h *Handler) GetType(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	t, err := h.svc.Type(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, t)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "record not found")
	default:
		response.InternalError(w)
	}
}
