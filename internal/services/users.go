package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/envelopezero/backend/internal/models"
	"github.com/google/uuid"
)

// findUserByEmail returns nil when no user owns the address.
func findUserByEmail(ctx context.Context, tx *sql.Tx, email string) (*models.Identity, error) {
	var identity models.Identity
	err := tx.QueryRowContext(ctx, `
		SELECT u.id, u.public_id
		FROM user_emails ue
		JOIN users u ON u.id = ue.user_id
		WHERE ue.email = $1 AND u.deleted_at IS NULL
		LIMIT 1`, email,
	).Scan(&identity.UserID, &identity.PublicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &identity, nil
}

// createUser inserts the user, its verified email and the magic-link auth method.
func createUser(ctx context.Context, tx *sql.Tx, email string) (*models.Identity, error) {
	identity := &models.Identity{UserID: models.NewID(), PublicID: models.NewPublicID()}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, public_id) VALUES ($1, $2)`,
		identity.UserID, identity.PublicID,
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_emails (id, user_id, email, verified_at) VALUES ($1, $2, $3, NOW())`,
		models.NewID(), identity.UserID, email,
	); err != nil {
		return nil, fmt.Errorf("insert user email: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO auth_methods (id, user_id, method_type, label) VALUES ($1, $2, $3, $4)`,
		models.NewID(), identity.UserID, models.AuthMethodMagicLinkEmail, email,
	); err != nil {
		return nil, fmt.Errorf("insert auth method: %w", err)
	}

	return identity, nil
}

// createDefaultBudget returns the internal and public id of the new budget.
func createDefaultBudget(ctx context.Context, tx *sql.Tx, userID uuid.UUID, name string) (uuid.UUID, string, error) {
	budgetID, publicID := models.NewID(), models.NewPublicID()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO budgets (id, public_id, user_id, name, currency_code, is_default)
		VALUES ($1, $2, $3, $4, $5, TRUE)`,
		budgetID, publicID, userID, name, models.DefaultCurrencyCode,
	); err != nil {
		return uuid.Nil, "", fmt.Errorf("insert default budget: %w", err)
	}
	return budgetID, publicID, nil
}
