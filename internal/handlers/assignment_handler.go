package handlers

import (
	"net/http"

	"github.com/envelopezero/backend/internal/models"
	"github.com/envelopezero/backend/internal/services"
)

type AssignmentHandler struct {
	service   *services.AssignmentService
	validator *services.ValidationHelper
}

func NewAssignmentHandler(service *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// List
// @Summary List category assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.CategoryAssignment
// @Failure 404 {string} string "Assignments disabled"
// @Router /category-assignments [get]
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	assignments, err := h.service.List(r.Context(), caller)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

// Create adds an amount to a category for a month
// @Summary Create category assignment
// @Description Assignments are additive; the month's total is the sum of all rows.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SaveCategoryAssignment true "Assignment"
// @Success 200 {object} models.CategoryAssignment
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {string} string "Assignments disabled"
// @Router /category-assignments [post]
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SaveCategoryAssignment
	if !decodeJSON(w, r, h.validator, "LEDGER", &req) {
		return
	}

	assignment, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}
