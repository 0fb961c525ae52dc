package handlers

import (
	"net/http"

	"github.com/envelopezero/backend/internal/models"
	"github.com/envelopezero/backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type BudgetHandler struct {
	service   *services.BudgetService
	validator *services.ValidationHelper
}

func NewBudgetHandler(service *services.BudgetService) *BudgetHandler {
	return &BudgetHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// List returns the caller's budgets
// @Summary List budgets
// @Tags Budgets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Budget
// @Failure 401 {object} services.ErrorResponse
// @Router /budgets [get]
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	budgets, err := h.service.List(r.Context(), caller)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

// Create adds a budget
// @Summary Create budget
// @Description Fails with 409 when the caller already has a budget and multi-budget mode is off.
// @Tags Budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SaveBudget true "Budget"
// @Success 200 {object} models.Budget
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /budgets [post]
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SaveBudget
	if !decodeJSON(w, r, h.validator, "LEDGER", &req) {
		return
	}

	budget, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// Update renames a budget
// @Summary Update budget
// @Tags Budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Param request body models.SaveBudget true "Budget"
// @Success 200 {object} models.Budget
// @Failure 400 {object} services.ErrorResponse
// @Router /budgets/{id} [put]
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SaveBudget
	if !decodeJSON(w, r, h.validator, "LEDGER", &req) {
		return
	}

	budget, err := h.service.Update(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// Delete soft-deletes a non-default budget
// @Summary Delete budget
// @Tags Budgets
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Success 204
// @Failure 409 {object} services.ErrorResponse
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		services.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
