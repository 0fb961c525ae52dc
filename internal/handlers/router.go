package handlers

import (
	"net/http"
	"time"

	_ "github.com/envelopezero/backend/docs"
	"github.com/envelopezero/backend/internal/config"
	mW "github.com/envelopezero/backend/internal/middleware"
	"github.com/envelopezero/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Sessions     services.SessionLookup
	Auth         *services.AuthService
	Budgets      *services.BudgetService
	Accounts     *services.AccountService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Projection   *services.ProjectionService
	Assignments  *services.AssignmentService
}

func NewRouter(cfg *config.Config, svc Services) http.Handler {
	authHandler := NewAuthHandler(svc.Auth)
	budgetHandler := NewBudgetHandler(svc.Budgets)
	ledgerHandler := NewLedgerHandler(svc.Accounts, svc.Categories)
	transactionHandler := NewTransactionHandler(svc.Transactions)
	projectionHandler := NewProjectionHandler(svc.Projection)
	assignmentHandler := NewAssignmentHandler(svc.Assignments)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.Server.AppOrigin},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         86400,
	}))

	// Unknown paths fall through to the web client; must be set before Route
	// so mounted sub-routers inherit it.
	r.NotFound(mW.SPAHandler(cfg.Server.WebDistDir).ServeHTTP)

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	authenticate := mW.Authenticate(svc.Sessions)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Health)

		// Public endpoints
		r.Post("/auth/magic-link/request", authHandler.RequestMagicLink)
		r.Post("/auth/magic-link/verify", authHandler.VerifyMagicLink)

		r.Route("/auth/passkey", func(r chi.Router) {
			r.Use(mW.RequireFeature(cfg.Features.Passkeys))
			r.Post("/register/start", authHandler.PasskeyNotImplemented)
			r.Post("/register/finish", authHandler.PasskeyNotImplemented)
		})

		// Feature gate runs before authentication so a disabled feature
		// looks like a missing route to everyone.
		r.Route("/category-assignments", func(r chi.Router) {
			r.Use(mW.RequireFeature(cfg.Features.Assignments))
			r.Use(authenticate)
			r.Get("/", assignmentHandler.List)
			r.Post("/", assignmentHandler.Create)
		})

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)

			r.Get("/budgets", budgetHandler.List)
			r.Post("/budgets", budgetHandler.Create)
			r.Put("/budgets/{id}", budgetHandler.Update)
			r.Delete("/budgets/{id}", budgetHandler.Delete)

			r.Get("/accounts", ledgerHandler.ListAccounts)
			r.Post("/accounts", ledgerHandler.CreateAccount)
			r.Put("/accounts/{id}", ledgerHandler.UpdateAccount)
			r.Delete("/accounts/{id}", ledgerHandler.DeleteAccount)

			r.Get("/supercategories", ledgerHandler.ListSupercategories)
			r.Post("/supercategories", ledgerHandler.CreateSupercategory)
			r.Put("/supercategories/{id}", ledgerHandler.UpdateSupercategory)
			r.Delete("/supercategories/{id}", ledgerHandler.DeleteSupercategory)

			r.Get("/categories", ledgerHandler.ListCategories)
			r.Post("/categories", ledgerHandler.CreateCategory)
			r.Put("/categories/{id}", ledgerHandler.UpdateCategory)
			r.Delete("/categories/{id}", ledgerHandler.DeleteCategory)

			r.Get("/transactions", transactionHandler.List)
			r.Post("/transactions", transactionHandler.Create)
			r.Put("/transactions/{id}", transactionHandler.Update)
			r.Delete("/transactions/{id}", transactionHandler.Delete)

			r.Get("/dashboard", projectionHandler.Dashboard)
			r.Get("/projections/month/{month}", projectionHandler.Month)
		})
	})

	return r
}

// Health reports liveness
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} object{ok=bool}
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
