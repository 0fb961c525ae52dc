package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/envelopezero/backend/internal/database"
	"github.com/envelopezero/backend/internal/models"
	"github.com/google/uuid"
)

const (
	SeedEmail       = "seed@envelopezero.local"
	SeedBudgetName  = "Seed Budget"
	SeedAccountName = "Checking"
)

// SeedDevData ensures the development user, its default budget and one
// account exist. Running it again changes nothing.
func SeedDevData(ctx context.Context, db *sql.DB) error {
	return database.WithTx(ctx, db, func(tx *sql.Tx) error {
		identity, err := findUserByEmail(ctx, tx, SeedEmail)
		if err != nil {
			return err
		}
		if identity == nil {
			if identity, err = createUser(ctx, tx, SeedEmail); err != nil {
				return err
			}
			log.Printf("[SEED] Created user %s", SeedEmail)
		}

		var budgetID uuid.UUID
		var budgetPublicID string
		err = tx.QueryRowContext(ctx, `
			SELECT id, public_id
			FROM budgets
			WHERE user_id = $1 AND is_default AND deleted_at IS NULL`, identity.UserID,
		).Scan(&budgetID, &budgetPublicID)
		if errors.Is(err, sql.ErrNoRows) {
			if budgetID, budgetPublicID, err = createDefaultBudget(ctx, tx, identity.UserID, SeedBudgetName); err != nil {
				return err
			}
			log.Printf("[SEED] Created budget %q", SeedBudgetName)
		} else if err != nil {
			return fmt.Errorf("select seed budget: %w", err)
		}

		var accounts int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM accounts WHERE budget_id = $1 AND deleted_at IS NULL`, budgetID,
		).Scan(&accounts); err != nil {
			return fmt.Errorf("count seed accounts: %w", err)
		}
		if accounts == 0 {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO accounts (id, public_id, user_id, budget_id, budget_public_id, name)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				models.NewID(), models.NewPublicID(), identity.UserID, budgetID, budgetPublicID, SeedAccountName,
			); err != nil {
				return fmt.Errorf("insert seed account: %w", err)
			}
			log.Printf("[SEED] Created account %q", SeedAccountName)
		}
		return nil
	})
}
