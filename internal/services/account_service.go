package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/envelopezero/backend/internal/audit"
	"github.com/envelopezero/backend/internal/models"
)

const accountColumns = `public_id, budget_public_id, name, created_at, updated_at`

type AccountService struct {
	db    *sql.DB
	audit *audit.AuditLogger
}

func NewAccountService(db *sql.DB, auditLogger *audit.AuditLogger) *AccountService {
	return &AccountService{db: db, audit: auditLogger}
}

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.BudgetID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AccountService) List(ctx context.Context, identity models.Identity) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at`, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (s *AccountService) Create(ctx context.Context, identity models.Identity, input models.SaveAccount) (*models.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (id, public_id, user_id, budget_id, budget_public_id, name)
		SELECT $1, $2, b.user_id, b.id, b.public_id, $5
		FROM budgets b
		WHERE b.public_id = $4 AND b.user_id = $3 AND b.deleted_at IS NULL
		RETURNING `+accountColumns,
		models.NewID(), models.NewPublicID(), identity.UserID, input.BudgetID, input.Name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidReference
	}
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}

	s.audit.LogMutation(identity.PublicID, "account", account.ID, "CREATE")
	return account, nil
}

func (s *AccountService) Update(ctx context.Context, identity models.Identity, id string, input models.SaveAccount) (*models.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, `
		UPDATE accounts a
		SET budget_id = b.id, budget_public_id = b.public_id, name = $4, updated_at = NOW()
		FROM budgets b
		WHERE a.public_id = $1 AND a.user_id = $2 AND a.deleted_at IS NULL
		  AND b.public_id = $3 AND b.user_id = $2 AND b.deleted_at IS NULL
		RETURNING a.public_id, a.budget_public_id, a.name, a.created_at, a.updated_at`,
		id, identity.UserID, input.BudgetID, input.Name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidReference
	}
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	s.audit.LogMutation(identity.PublicID, "account", account.ID, "UPDATE")
	return account, nil
}

func (s *AccountService) Delete(ctx context.Context, identity models.Identity, id string) error {
	return softDelete(ctx, s.db, s.audit, identity, "accounts", "account", id)
}

// softDelete marks a user-owned row deleted. Missing rows are not an error.
func softDelete(ctx context.Context, db *sql.DB, auditLogger *audit.AuditLogger, identity models.Identity, table, entity, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET deleted_at = NOW(), updated_at = NOW() WHERE public_id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		id, identity.UserID,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		auditLogger.LogMutation(identity.PublicID, entity, id, "DELETE")
	}
	return nil
}
