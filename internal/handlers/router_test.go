package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/envelopezero/backend/internal/config"
	"github.com/envelopezero/backend/internal/models"
	"github.com/envelopezero/backend/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testToken = "session-token"

type mockSessionLookup struct {
	mock.Mock
}

func (m *mockSessionLookup) LookupUserByTokenHash(ctx context.Context, tokenHash string) (*models.Identity, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

type testServer struct {
	handler  http.Handler
	db       *sql.DB
	mock     sqlmock.Sqlmock
	identity models.Identity
}

func newTestServer(t *testing.T, features config.FeatureConfig) *testServer {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>app</html>"), 0o644))

	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "8080", AppOrigin: "http://localhost:8080", WebDistDir: dist},
		Features: features,
	}

	identity := models.Identity{UserID: uuid.New(), PublicID: models.NewPublicID()}
	lookup := new(mockSessionLookup)
	lookup.On("LookupUserByTokenHash", mock.Anything, services.HashToken(testToken)).Return(&identity, nil)
	lookup.On("LookupUserByTokenHash", mock.Anything, mock.Anything).Return(nil, nil)

	svc := Services{
		Sessions: lookup,
		Auth: services.NewAuthService(db, nil, nil, nil, services.AuthSettings{
			AppOrigin: cfg.Server.AppOrigin, MagicLinkTTL: 15 * time.Minute, SessionTTL: time.Hour,
		}),
		Budgets:      services.NewBudgetService(db, nil, features.MultiBudget),
		Accounts:     services.NewAccountService(db, nil),
		Categories:   services.NewCategoryService(db, nil),
		Transactions: services.NewTransactionService(db, nil),
		Projection:   services.NewProjectionService(db),
		Assignments:  services.NewAssignmentService(db, nil),
	}

	return &testServer{handler: NewRouter(cfg, svc), db: db, mock: dbMock, identity: identity}
}

func (s *testServer) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, config.FeatureConfig{})

	w := s.do(http.MethodGet, "/api/health", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestPasskeyRoutes(t *testing.T) {
	t.Run("disabled looks like a missing route", func(t *testing.T) {
		s := newTestServer(t, config.FeatureConfig{Passkeys: false})

		missing := s.do(http.MethodPost, "/api/auth/does-not-exist", "", false)
		for _, path := range []string{"/api/auth/passkey/register/start", "/api/auth/passkey/register/finish"} {
			w := s.do(http.MethodPost, path, "", false)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, missing.Body.String(), w.Body.String())
		}
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/auth/passkey/register/start", "", false).Code)
	})

	t.Run("enabled is not implemented", func(t *testing.T) {
		s := newTestServer(t, config.FeatureConfig{Passkeys: true})

		assert.Equal(t, http.StatusNotImplemented, s.do(http.MethodPost, "/api/auth/passkey/register/start", "", false).Code)
		assert.Equal(t, http.StatusNotImplemented, s.do(http.MethodPost, "/api/auth/passkey/register/finish", "", false).Code)
	})
}

func TestCategoryAssignmentsFeature(t *testing.T) {
	t.Run("disabled is 404 with or without a session", func(t *testing.T) {
		s := newTestServer(t, config.FeatureConfig{Assignments: false})

		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/category-assignments", "", false).Code)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/category-assignments", "", true).Code)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/category-assignments", `{}`, true).Code)
	})

	t.Run("enabled requires a session", func(t *testing.T) {
		s := newTestServer(t, config.FeatureConfig{Assignments: true})

		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/category-assignments", "", false).Code)
	})

	t.Run("enabled lists assignments", func(t *testing.T) {
		s := newTestServer(t, config.FeatureConfig{Assignments: true})
		s.mock.ExpectQuery("FROM category_assignments").
			WithArgs(s.identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"public_id", "budget_public_id", "category_public_id", "month", "amount", "created_at"}))

		w := s.do(http.MethodGet, "/api/category-assignments", "", true)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
		assert.NoError(t, s.mock.ExpectationsWereMet())
	})
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t, config.FeatureConfig{})

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodGet, "/api/budgets"},
		{http.MethodGet, "/api/accounts"},
		{http.MethodGet, "/api/supercategories"},
		{http.MethodGet, "/api/categories"},
		{http.MethodGet, "/api/transactions"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/projections/month/2026-02"},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := s.do(route.method, route.path, "", false)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var resp services.ErrorResponse
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/budgets", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	s.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMonthProjection(t *testing.T) {
	s := newTestServer(t, config.FeatureConfig{})

	t.Run("malformed month", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/projections/month/2026-2", "", true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("valid month", func(t *testing.T) {
		s.mock.ExpectQuery("FROM categories c").
			WithArgs(s.identity.UserID, "2026-02-01", "2026-03-01").
			WillReturnRows(sqlmock.NewRows([]string{"public_id", "assigned", "activity"}).
				AddRow("ca0000000000000000000000000000ca", 4500, 1200))

		w := s.do(http.MethodGet, "/api/projections/month/2026-02", "", true)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"category_id":"ca0000000000000000000000000000ca","assigned":4500,"activity":1200,"available":3300}]`, w.Body.String())
		assert.NoError(t, s.mock.ExpectationsWereMet())
	})
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t, config.FeatureConfig{})
	s.mock.ExpectQuery("SELECT COALESCE").
		WithArgs(s.identity.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"inflow", "outflow"}).AddRow(0, 0))

	w := s.do(http.MethodGet, "/api/dashboard", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"inflow":0,"outflow":0,"available":0}`, w.Body.String())
}

func TestRequestBodies(t *testing.T) {
	s := newTestServer(t, config.FeatureConfig{})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/budgets", `{"name":"Home","owner":"someone-else"}`, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("multiple objects are rejected", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/budgets", `{"name":"Home"}{"name":"Again"}`, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("struct validation", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/accounts", `{"budget_id":"short","name":""}`, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp services.ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Details, "BudgetID")
		assert.Contains(t, resp.Details, "Name")
	})

	t.Run("invalid split shape", func(t *testing.T) {
		body := `{"budget_id":"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","account_id":"ac0000000000000000000000000000ac","date":"2026-02-03",
			"splits":[{"category_id":"ca0000000000000000000000000000ca","inflow":100,"outflow":100}]}`
		w := s.do(http.MethodPost, "/api/transactions", body, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad email", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/auth/magic-link/request", `{"email":"nobody"}`, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing verify token", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/auth/magic-link/verify", `{"token":""}`, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestBudgets(t *testing.T) {
	s := newTestServer(t, config.FeatureConfig{})

	t.Run("second budget conflicts", func(t *testing.T) {
		s.mock.ExpectBegin()
		s.mock.ExpectQuery("SELECT public_id FROM users").
			WithArgs(s.identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"public_id"}).AddRow(s.identity.PublicID))
		s.mock.ExpectQuery("SELECT COUNT").
			WithArgs(s.identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		s.mock.ExpectRollback()

		w := s.do(http.MethodPost, "/api/budgets", `{"name":"Second"}`, true)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete missing budget", func(t *testing.T) {
		s.mock.ExpectBegin()
		s.mock.ExpectQuery("SELECT id, is_default FROM budgets").
			WithArgs("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", s.identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "is_default"}))
		s.mock.ExpectCommit()

		w := s.do(http.MethodDelete, "/api/budgets/bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "", true)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("foreign account reference", func(t *testing.T) {
		s.mock.ExpectQuery("INSERT INTO accounts").
			WillReturnRows(sqlmock.NewRows([]string{"public_id", "budget_public_id", "name", "created_at", "updated_at"}))

		w := s.do(http.MethodPost, "/api/accounts", `{"budget_id":"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb","name":"Savings"}`, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestFallbackRoutes(t *testing.T) {
	s := newTestServer(t, config.FeatureConfig{})

	t.Run("client route serves the web app", func(t *testing.T) {
		w := s.do(http.MethodGet, "/budgets/overview", "", false)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "<html>app</html>", w.Body.String())
	})

	t.Run("unknown api route", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/nothing-here", "", false).Code)
	})

	t.Run("swagger document", func(t *testing.T) {
		w := s.do(http.MethodGet, "/swagger/doc.json", "", false)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/projections/month/{month}")
	})
}
