package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/envelopezero/backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var budgetRowColumns = []string{"public_id", "name", "currency_code", "is_default", "created_at", "updated_at"}

func testIdentity() models.Identity {
	return models.Identity{UserID: uuid.New(), PublicID: models.NewPublicID()}
}

func TestBudgetService_Create(t *testing.T) {
	ctx := context.Background()
	identity := testIdentity()
	now := time.Now()

	t.Run("first budget becomes default", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewBudgetService(db, nil, false)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT public_id FROM users WHERE id = \\$1 FOR UPDATE").
			WithArgs(identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"public_id"}).AddRow(identity.PublicID))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM budgets").
			WithArgs(identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("INSERT INTO budgets").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), identity.UserID, "Household", "EUR", true).
			WillReturnRows(sqlmock.NewRows(budgetRowColumns).
				AddRow("b0000000000000000000000000000001", "Household", "EUR", true, now, now))
		mock.ExpectCommit()

		budget, err := svc.Create(ctx, identity, models.SaveBudget{Name: "Household", CurrencyCode: "eur"})
		require.NoError(t, err)
		assert.True(t, budget.IsDefault)
		assert.Equal(t, "EUR", budget.CurrencyCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second budget conflicts without multi-budget mode", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewBudgetService(db, nil, false)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT public_id FROM users WHERE id = \\$1 FOR UPDATE").
			WithArgs(identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"public_id"}).AddRow(identity.PublicID))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM budgets").
			WithArgs(identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		_, err = svc.Create(ctx, identity, models.SaveBudget{Name: "Second"})
		assert.ErrorIs(t, err, ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("multi-budget mode allows more budgets", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewBudgetService(db, nil, true)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT public_id FROM users WHERE id = \\$1 FOR UPDATE").
			WithArgs(identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"public_id"}).AddRow(identity.PublicID))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM budgets").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("INSERT INTO budgets").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), identity.UserID, "Second", models.DefaultCurrencyCode, false).
			WillReturnRows(sqlmock.NewRows(budgetRowColumns).
				AddRow("b0000000000000000000000000000002", "Second", "USD", false, now, now))
		mock.ExpectCommit()

		budget, err := svc.Create(ctx, identity, models.SaveBudget{Name: "Second"})
		require.NoError(t, err)
		assert.False(t, budget.IsDefault)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent default insert maps to conflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewBudgetService(db, nil, false)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT public_id FROM users WHERE id = \\$1 FOR UPDATE").
			WithArgs(identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"public_id"}).AddRow(identity.PublicID))
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM budgets").
			WithArgs(identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("INSERT INTO budgets").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "budgets_one_default_per_user"})
		mock.ExpectRollback()

		_, err = svc.Create(ctx, identity, models.SaveBudget{Name: "Household"})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, 409, StatusFor(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBudgetService_ListAndUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	identity := testIdentity()
	svc := NewBudgetService(db, nil, false)
	now := time.Now()

	mock.ExpectQuery("SELECT public_id, name, currency_code, is_default, created_at, updated_at FROM budgets").
		WithArgs(identity.UserID).
		WillReturnRows(sqlmock.NewRows(budgetRowColumns).
			AddRow("b0000000000000000000000000000001", "My Budget", "USD", true, now, now))

	budgets, err := svc.List(ctx, identity)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, "My Budget", budgets[0].Name)

	mock.ExpectQuery("UPDATE budgets").
		WithArgs("b0000000000000000000000000000009", identity.UserID, "Renamed", "USD").
		WillReturnRows(sqlmock.NewRows(budgetRowColumns))

	_, err = svc.Update(ctx, identity, "b0000000000000000000000000000009", models.SaveBudget{Name: "Renamed"})
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetService_Delete(t *testing.T) {
	ctx := context.Background()
	identity := testIdentity()
	budgetID := uuid.New().String()

	t.Run("default budget cannot be deleted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewBudgetService(db, nil, true)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, is_default FROM budgets").
			WithArgs("b0000000000000000000000000000001", identity.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "is_default"}).AddRow(budgetID, true))
		mock.ExpectRollback()

		err = svc.Delete(ctx, identity, "b0000000000000000000000000000001")
		assert.ErrorIs(t, err, ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-default budget cascades to its children", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewBudgetService(db, nil, true)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, is_default FROM budgets").
			WillReturnRows(sqlmock.NewRows([]string{"id", "is_default"}).AddRow(budgetID, false))
		mock.ExpectExec("UPDATE budgets SET deleted_at = NOW").
			WithArgs(budgetID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		for _, table := range budgetChildTables {
			mock.ExpectExec("UPDATE " + table + " SET deleted_at = NOW").
				WithArgs(budgetID).
				WillReturnResult(sqlmock.NewResult(0, 2))
		}
		mock.ExpectCommit()

		err = svc.Delete(ctx, identity, "b0000000000000000000000000000002")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing budget is not an error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewBudgetService(db, nil, true)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, is_default FROM budgets").
			WillReturnRows(sqlmock.NewRows([]string{"id", "is_default"}))
		mock.ExpectCommit()

		assert.NoError(t, svc.Delete(ctx, identity, "b0000000000000000000000000000003"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
