package handlers

import (
	"net/http"

	"github.com/envelopezero/backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type ProjectionHandler struct {
	service *services.ProjectionService
}

func NewProjectionHandler(service *services.ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{service: service}
}

// Dashboard
// @Summary All-time totals
// @Tags Projection
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Dashboard
// @Failure 401 {object} services.ErrorResponse
// @Router /dashboard [get]
func (h *ProjectionHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), caller)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// Month returns assigned, activity and available per category
// @Summary Month projection
// @Tags Projection
// @Produce json
// @Security BearerAuth
// @Param month path string true "Month as YYYY-MM"
// @Success 200 {array} models.CategoryProjection
// @Failure 400 {object} services.ErrorResponse
// @Router /projections/month/{month} [get]
func (h *ProjectionHandler) Month(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	projections, err := h.service.MonthProjection(r.Context(), caller, chi.URLParam(r, "month"))
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projections)
}
