package handlers

import (
	"net/http"

	"github.com/envelopezero/backend/internal/models"
	"github.com/envelopezero/backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// LedgerHandler serves accounts, supercategories and categories.
type LedgerHandler struct {
	accounts   *services.AccountService
	categories *services.CategoryService
	validator  *services.ValidationHelper
}

func NewLedgerHandler(accounts *services.AccountService, categories *services.CategoryService) *LedgerHandler {
	return &LedgerHandler{
		accounts:   accounts,
		categories: categories,
		validator:  services.NewValidationHelper(),
	}
}

// ListAccounts
// @Summary List accounts
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Account
// @Router /accounts [get]
func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	accounts, err := h.accounts.List(r.Context(), caller)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// CreateAccount
// @Summary Create account
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SaveAccount true "Account"
// @Success 200 {object} models.Account
// @Failure 400 {object} services.ErrorResponse
// @Router /accounts [post]
func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SaveAccount
	if !decodeJSON(w, r, h.validator, "LEDGER", &req) {
		return
	}

	account, err := h.accounts.Create(r.Context(), caller, req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// UpdateAccount
// @Summary Update account
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param request body models.SaveAccount true "Account"
// @Success 200 {object} models.Account
// @Failure 400 {object} services.ErrorResponse
// @Router /accounts/{id} [put]
func (h *LedgerHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SaveAccount
	if !decodeJSON(w, r, h.validator, "LEDGER", &req) {
		return
	}

	account, err := h.accounts.Update(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// DeleteAccount
// @Summary Delete account
// @Tags Accounts
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 204
// @Router /accounts/{id} [delete]
func (h *LedgerHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	if err := h.accounts.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		services.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSupercategories
// @Summary List supercategories
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Supercategory
// @Router /supercategories [get]
func (h *LedgerHandler) ListSupercategories(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	supercategories, err := h.categories.ListSupercategories(r.Context(), caller)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, supercategories)
}

// CreateSupercategory
// @Summary Create supercategory
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SaveSupercategory true "Supercategory"
// @Success 200 {object} models.Supercategory
// @Failure 400 {object} services.ErrorResponse
// @Router /supercategories [post]
func (h *LedgerHandler) CreateSupercategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SaveSupercategory
	if !decodeJSON(w, r, h.validator, "LEDGER", &req) {
		return
	}

	sc, err := h.categories.CreateSupercategory(r.Context(), caller, req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// UpdateSupercategory
// @Summary Update supercategory
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Supercategory ID"
// @Param request body models.SaveSupercategory true "Supercategory"
// @Success 200 {object} models.Supercategory
// @Failure 400 {object} services.ErrorResponse
// @Router /supercategories/{id} [put]
func (h *LedgerHandler) UpdateSupercategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SaveSupercategory
	if !decodeJSON(w, r, h.validator, "LEDGER", &req) {
		return
	}

	sc, err := h.categories.UpdateSupercategory(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// DeleteSupercategory
// @Summary Delete supercategory
// @Tags Categories
// @Security BearerAuth
// @Param id path string true "Supercategory ID"
// @Success 204
// @Router /supercategories/{id} [delete]
func (h *LedgerHandler) DeleteSupercategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	if err := h.categories.DeleteSupercategory(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		services.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCategories
// @Summary List categories
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h *LedgerHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	categories, err := h.categories.ListCategories(r.Context(), caller)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory
// @Summary Create category
// @Description The supercategory must belong to the same budget.
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SaveCategory true "Category"
// @Success 200 {object} models.Category
// @Failure 400 {object} services.ErrorResponse
// @Router /categories [post]
func (h *LedgerHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SaveCategory
	if !decodeJSON(w, r, h.validator, "LEDGER", &req) {
		return
	}

	c, err := h.categories.CreateCategory(r.Context(), caller, req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateCategory
// @Summary Update category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body models.SaveCategory true "Category"
// @Success 200 {object} models.Category
// @Failure 400 {object} services.ErrorResponse
// @Router /categories/{id} [put]
func (h *LedgerHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.SaveCategory
	if !decodeJSON(w, r, h.validator, "LEDGER", &req) {
		return
	}

	c, err := h.categories.UpdateCategory(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory
// @Summary Delete category
// @Tags Categories
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 204
// @Router /categories/{id} [delete]
func (h *LedgerHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	if err := h.categories.DeleteCategory(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		services.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
