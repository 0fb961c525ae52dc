package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/envelopezero/backend/internal/audit"
	"github.com/envelopezero/backend/internal/database"
	"github.com/envelopezero/backend/internal/models"
	"github.com/google/uuid"
)

const budgetColumns = `public_id, name, currency_code, is_default, created_at, updated_at`

type BudgetService struct {
	db          *sql.DB
	audit       *audit.AuditLogger
	multiBudget bool
}

func NewBudgetService(db *sql.DB, auditLogger *audit.AuditLogger, multiBudget bool) *BudgetService {
	return &BudgetService{db: db, audit: auditLogger, multiBudget: multiBudget}
}

func scanBudget(row interface{ Scan(...any) error }) (*models.Budget, error) {
	var b models.Budget
	if err := row.Scan(&b.ID, &b.Name, &b.CurrencyCode, &b.IsDefault, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func currencyOrDefault(code string) string {
	if code == "" {
		return models.DefaultCurrencyCode
	}
	return strings.ToUpper(code)
}

func (s *BudgetService) List(ctx context.Context, identity models.Identity) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at`, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

// Create adds a budget. Without multi-budget mode a user keeps exactly one.
// A user with no live budget gets the new one as default.
func (s *BudgetService) Create(ctx context.Context, identity models.Identity, input models.SaveBudget) (*models.Budget, error) {
	var budget *models.Budget
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// serializes budget creation per user so the count below stays accurate
		var locked string
		err := tx.QueryRowContext(ctx,
			`SELECT public_id FROM users WHERE id = $1 FOR UPDATE`, identity.UserID,
		).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUnauthorized
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM budgets WHERE user_id = $1 AND deleted_at IS NULL`, identity.UserID,
		).Scan(&count); err != nil {
			return fmt.Errorf("count budgets: %w", err)
		}
		if count > 0 && !s.multiBudget {
			return fmt.Errorf("%w: multi-budget mode is disabled", ErrConflict)
		}

		budget, err = scanBudget(tx.QueryRowContext(ctx, `
			INSERT INTO budgets (id, public_id, user_id, name, currency_code, is_default)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+budgetColumns,
			models.NewID(), models.NewPublicID(), identity.UserID, input.Name, currencyOrDefault(input.CurrencyCode), count == 0,
		))
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user already has a default budget", ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("insert budget: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogMutation(identity.PublicID, "budget", budget.ID, "CREATE")
	return budget, nil
}

func (s *BudgetService) Update(ctx context.Context, identity models.Identity, id string, input models.SaveBudget) (*models.Budget, error) {
	budget, err := scanBudget(s.db.QueryRowContext(ctx, `
		UPDATE budgets
		SET name = $3, currency_code = $4, updated_at = NOW()
		WHERE public_id = $1 AND user_id = $2 AND deleted_at IS NULL
		RETURNING `+budgetColumns,
		id, identity.UserID, input.Name, currencyOrDefault(input.CurrencyCode),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidReference
	}
	if err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}

	s.audit.LogMutation(identity.PublicID, "budget", budget.ID, "UPDATE")
	return budget, nil
}

// budgetChildTables are soft-deleted together with their budget.
var budgetChildTables = []string{"accounts", "supercategories", "categories", "transactions", "category_assignments"}

// Delete soft-deletes a non-default budget and everything filed under it.
func (s *BudgetService) Delete(ctx context.Context, identity models.Identity, id string) error {
	deleted := false
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var budgetID uuid.UUID
		var isDefault bool
		err := tx.QueryRowContext(ctx, `
			SELECT id, is_default
			FROM budgets
			WHERE public_id = $1 AND user_id = $2 AND deleted_at IS NULL
			FOR UPDATE`, id, identity.UserID,
		).Scan(&budgetID, &isDefault)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("select budget: %w", err)
		}
		if isDefault {
			return fmt.Errorf("%w: the default budget cannot be deleted", ErrConflict)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE budgets SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1`, budgetID,
		); err != nil {
			return fmt.Errorf("delete budget: %w", err)
		}
		for _, table := range budgetChildTables {
			if _, err := tx.ExecContext(ctx,
				`UPDATE `+table+` SET deleted_at = NOW(), updated_at = NOW() WHERE budget_id = $1 AND deleted_at IS NULL`, budgetID,
			); err != nil {
				return fmt.Errorf("delete %s of budget: %w", table, err)
			}
		}
		deleted = true
		return nil
	})
	if err != nil {
		return err
	}

	if deleted {
		s.audit.LogMutation(identity.PublicID, "budget", id, "DELETE")
	}
	return nil
}
