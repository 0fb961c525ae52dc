package handlers

import (
	"log"
	"net/http"

	"github.com/envelopezero/backend/internal/models"
	"github.com/envelopezero/backend/internal/services"
)

type AuthHandler struct {
	service   *services.AuthService
	validator *services.ValidationHelper
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// RequestMagicLink sends a single-use sign-in link
// @Summary Request magic link
// @Description Issue a sign-in link for an email. The response does not reveal whether the email is registered.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.MagicLinkRequest true "Email address"
// @Success 200 {object} models.MagicLinkRequestResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 429 {object} services.ErrorResponse
// @Router /auth/magic-link/request [post]
func (h *AuthHandler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req models.MagicLinkRequest
	if !decodeJSON(w, r, h.validator, "AUTH", &req) {
		return
	}

	resp, err := h.service.RequestMagicLink(r.Context(), req.Email)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// VerifyMagicLink exchanges a magic-link token for a session
// @Summary Verify magic link
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.MagicLinkVerifyRequest true "Magic link token"
// @Success 200 {object} models.SessionResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/magic-link/verify [post]
func (h *AuthHandler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	var req models.MagicLinkVerifyRequest
	if !decodeJSON(w, r, h.validator, "AUTH", &req) {
		return
	}

	resp, err := h.service.VerifyMagicLink(r.Context(), req.Token)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me returns the signed-in user
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	user, err := h.service.Me(r.Context(), caller)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout revokes the current session
// @Summary Logout
// @Tags Auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	token, err := services.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		services.WriteError(w, err)
		return
	}

	if err := h.service.Logout(r.Context(), caller, token); err != nil {
		services.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PasskeyNotImplemented answers passkey registration while the flow is unbuilt.
func (h *AuthHandler) PasskeyNotImplemented(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Passkey endpoint %s called", r.URL.Path)
	services.SendErrorResponse(w, "Passkey registration is not implemented", http.StatusNotImplemented, nil)
}
