package handlers

import (
	"net/http"

	"github.com/envelopezero/backend/internal/models"
	"github.com/envelopezero/backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type TransactionHandler struct {
	service   *services.TransactionService
	validator *services.ValidationHelper
}

func NewTransactionHandler(service *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// List returns transactions newest first, each with its splits
// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Transaction
// @Router /transactions [get]
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	txs, err := h.service.List(r.Context(), caller)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// Create records a transaction
// @Summary Create transaction
// @Description Every split needs exactly one of inflow or outflow and a category in the transaction's budget.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SaveTransaction true "Transaction"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} services.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SaveTransaction
	if !decodeJSON(w, r, h.validator, "TRANSACTION", &req) {
		return
	}

	tx, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Update replaces a transaction and all of its splits
// @Summary Update transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param request body models.SaveTransaction true "Transaction"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} services.ErrorResponse
// @Router /transactions/{id} [put]
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SaveTransaction
	if !decodeJSON(w, r, h.validator, "TRANSACTION", &req) {
		return
	}

	tx, err := h.service.Update(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Delete
// @Summary Delete transaction
// @Tags Transactions
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 204
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
