package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/enzococca/soqotra-rockart/internal/response"
	"github.com/enzococca/soqotra-rockart/internal/user"
)

// usernameRegex matches 3–80 characters of letters, digits, dots, dashes
// and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,80}$`)

// emailRegex is a light sanity check, not full RFC 5322.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Username string `json:"username" example:"e.cocca"`
	Email    string `json:"email"    example:"e.cocca@example.org"`
	Password string `json:"password" example:"correct horse battery"`
}

type loginRequest struct {
	Username string `json:"username" example:"e.cocca"`
	Password string `json:"password" example:"correct horse battery"`
}

type loginData struct {
	Token string    `json:"token" example:"eyJhbGci..."`
	User  user.User `json:"user"`
}

// Register godoc
//
//	@Summary		Register a new account
//	@Description	Creates an account. The first account becomes an approved admin; later accounts must be approved by an admin before they can log in.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Registration details"
//	@Success		201		{object}	response.Envelope{data=user.User}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		response.BadRequest(w, "username must be 3-80 characters (letters, digits, . _ -)")
		return
	}
	if !emailRegex.MatchString(req.Email) {
		response.BadRequest(w, "invalid email address")
		return
	}
	if len(req.Password) < 6 {
		response.BadRequest(w, "password must be at least 6 characters")
		return
	}

	u, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			response.Conflict(w, "username or email already registered")
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, u)
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Verifies the credentials and returns a JWT for approved accounts.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=loginData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		403		{object}	response.Envelope
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, "username and password are required")
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(w, "invalid username or password")
		case errors.Is(err, ErrNotApproved):
			response.Forbidden(w, "account awaiting admin approval")
		case errors.Is(err, ErrDisabled):
			response.Forbidden(w, "account disabled")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]any{
		"token": token,
		"user":  u,
	})
}
