package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/enzococca/soqotra-rockart/internal/middleware"
	"github.com/enzococca/soqotra-rockart/internal/response"
)

// Handler holds HTTP handlers for user-related endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new user Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetMe godoc
//
//	@Summary		Get current user
//	@Description	Returns the profile of the currently authenticated user.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=User}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.svc.GetByID(r.Context(), userID)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "user not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, u)
}

// List godoc
//
//	@Summary		List users
//	@Description	All accounts, for the admin management screen.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]User}
//	@Failure		403	{object}	response.Envelope
//	@Router			/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	if users == nil {
		users = []*User{}
	}
	response.OK(w, users)
}

// Approve godoc
//
//	@Summary		Approve an account
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	response.Envelope{data=User}
//	@Failure		404	{object}	response.Envelope
//	@Router			/users/{id}/approve [patch]
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "user not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, u)
}

type changeRoleRequest struct {
	Role string `json:"role" example:"editor"`
}

// ChangeRole godoc
//
//	@Summary		Change an account's role
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"User ID"
//	@Param			request	body		changeRoleRequest	true	"New role"
//	@Success		200		{object}	response.Envelope{data=User}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Router			/users/{id}/role [patch]
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	u, err := h.svc.ChangeRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			response.BadRequest(w, err.Error())
		case h.svc.IsNotFound(err):
			response.NotFound(w, "user not found")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, u)
}
