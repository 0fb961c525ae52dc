package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/envelopezero/backend/internal/audit"
	"github.com/envelopezero/backend/internal/database"
	"github.com/envelopezero/backend/internal/models"
	"github.com/google/uuid"
)

type TransactionService struct {
	db    *sql.DB
	audit *audit.AuditLogger
}

func NewTransactionService(db *sql.DB, auditLogger *audit.AuditLogger) *TransactionService {
	return &TransactionService{db: db, audit: auditLogger}
}

// ValidateSplits requires at least one split, each with exactly one of
// inflow and outflow strictly positive and neither negative.
func ValidateSplits(splits []models.SplitInput) error {
	if len(splits) == 0 {
		return fmt.Errorf("%w: a transaction needs at least one split", ErrValidation)
	}
	for i, split := range splits {
		if split.Inflow < 0 || split.Outflow < 0 {
			return fmt.Errorf("%w: split %d has a negative amount", ErrValidation, i)
		}
		if (split.Inflow > 0) == (split.Outflow > 0) {
			return fmt.Errorf("%w: split %d must have exactly one of inflow or outflow", ErrValidation, i)
		}
	}
	return nil
}

func (s *TransactionService) List(ctx context.Context, identity models.Identity) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT public_id, budget_public_id, account_public_id, tx_date, payee, memo
		FROM transactions
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY tx_date DESC, created_at DESC`, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	index := map[string]int{}
	for rows.Next() {
		var t models.Transaction
		var txDate time.Time
		if err := rows.Scan(&t.ID, &t.BudgetID, &t.AccountID, &txDate, &t.Payee, &t.Memo); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = txDate.Format(models.DateLayout)
		t.Splits = []models.Split{}
		index[t.ID] = len(transactions)
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return transactions, nil
	}

	splitRows, err := s.db.QueryContext(ctx, `
		SELECT s.transaction_public_id, s.public_id, s.category_public_id, s.memo, s.inflow, s.outflow
		FROM transaction_splits s
		JOIN transactions t ON t.id = s.transaction_id
		WHERE t.user_id = $1 AND t.deleted_at IS NULL AND s.deleted_at IS NULL
		ORDER BY s.created_at, s.id`, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var txID string
		var split models.Split
		if err := splitRows.Scan(&txID, &split.ID, &split.CategoryID, &split.Memo, &split.Inflow, &split.Outflow); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		if i, ok := index[txID]; ok {
			transactions[i].Splits = append(transactions[i].Splits, split)
		}
	}
	return transactions, splitRows.Err()
}

func (s *TransactionService) Create(ctx context.Context, identity models.Identity, input models.SaveTransaction) (*models.Transaction, error) {
	txDate, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	var result *models.Transaction
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var txID uuid.UUID
		t := models.Transaction{Date: txDate.Format(models.DateLayout), Payee: input.Payee, Memo: input.Memo}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO transactions (id, public_id, user_id, budget_id, budget_public_id, account_id, account_public_id, tx_date, payee, memo)
			SELECT $1, $2, b.user_id, b.id, b.public_id, a.id, a.public_id, $6, $7, $8
			FROM budgets b
			JOIN accounts a
			  ON a.public_id = $5 AND a.user_id = b.user_id AND a.budget_id = b.id AND a.deleted_at IS NULL
			WHERE b.public_id = $4 AND b.user_id = $3 AND b.deleted_at IS NULL
			RETURNING id, public_id, budget_public_id, account_public_id`,
			models.NewID(), models.NewPublicID(), identity.UserID, input.BudgetID, input.AccountID,
			t.Date, input.Payee, input.Memo,
		).Scan(&txID, &t.ID, &t.BudgetID, &t.AccountID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidReference
		}
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		if t.Splits, err = insertSplits(ctx, tx, txID, identity, input.Splits); err != nil {
			return err
		}
		result = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[TRANSACTION] Created %s with %d splits", result.ID, len(result.Splits))
	s.audit.LogMutation(identity.PublicID, "transaction", result.ID, "CREATE")
	return result, nil
}

// Update replaces the transaction's fields and its whole split set. Previous
// splits are soft-deleted; the new ones get fresh ids.
func (s *TransactionService) Update(ctx context.Context, identity models.Identity, id string, input models.SaveTransaction) (*models.Transaction, error) {
	txDate, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	var result *models.Transaction
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var txID uuid.UUID
		t := models.Transaction{Date: txDate.Format(models.DateLayout), Payee: input.Payee, Memo: input.Memo}
		err := tx.QueryRowContext(ctx, `
			UPDATE transactions t
			SET budget_id = b.id, budget_public_id = b.public_id,
			    account_id = a.id, account_public_id = a.public_id,
			    tx_date = $5, payee = $6, memo = $7, updated_at = NOW()
			FROM budgets b
			JOIN accounts a
			  ON a.public_id = $4 AND a.user_id = b.user_id AND a.budget_id = b.id AND a.deleted_at IS NULL
			WHERE t.public_id = $1 AND t.user_id = $2 AND t.deleted_at IS NULL
			  AND b.public_id = $3 AND b.user_id = $2 AND b.deleted_at IS NULL
			RETURNING t.id, t.public_id, t.budget_public_id, t.account_public_id`,
			id, identity.UserID, input.BudgetID, input.AccountID, t.Date, input.Payee, input.Memo,
		).Scan(&txID, &t.ID, &t.BudgetID, &t.AccountID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidReference
		}
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE transaction_splits
			SET deleted_at = NOW(), updated_at = NOW()
			WHERE transaction_id = $1 AND deleted_at IS NULL`, txID,
		); err != nil {
			return fmt.Errorf("delete previous splits: %w", err)
		}

		if t.Splits, err = insertSplits(ctx, tx, txID, identity, input.Splits); err != nil {
			return err
		}
		result = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogMutation(identity.PublicID, "transaction", result.ID, "UPDATE")
	return result, nil
}

func (s *TransactionService) Delete(ctx context.Context, identity models.Identity, id string) error {
	return softDelete(ctx, s.db, s.audit, identity, "transactions", "transaction", id)
}

func (s *TransactionService) validate(input models.SaveTransaction) (time.Time, error) {
	if err := ValidateSplits(input.Splits); err != nil {
		return time.Time{}, err
	}
	txDate, err := input.ParseDate()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be formatted as YYYY-MM-DD", ErrValidation)
	}
	return txDate, nil
}

// insertSplits writes each split only if its category belongs to the
// transaction's budget and the caller. Any miss aborts the whole write.
func insertSplits(ctx context.Context, tx *sql.Tx, txID uuid.UUID, identity models.Identity, inputs []models.SplitInput) ([]models.Split, error) {
	splits := make([]models.Split, 0, len(inputs))
	for _, input := range inputs {
		var split models.Split
		err := tx.QueryRowContext(ctx, `
			INSERT INTO transaction_splits (id, public_id, transaction_id, transaction_public_id, category_id, category_public_id, memo, inflow, outflow)
			SELECT $1, $2, t.id, t.public_id, c.id, c.public_id, $5, $6, $7
			FROM transactions t
			JOIN categories c
			  ON c.public_id = $4 AND c.user_id = $8 AND c.budget_id = t.budget_id AND c.deleted_at IS NULL
			WHERE t.id = $3
			RETURNING public_id, category_public_id, memo, inflow, outflow`,
			models.NewID(), models.NewPublicID(), txID, input.CategoryID, input.Memo, input.Inflow, input.Outflow, identity.UserID,
		).Scan(&split.ID, &split.CategoryID, &split.Memo, &split.Inflow, &split.Outflow)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidReference
		}
		if err != nil {
			return nil, fmt.Errorf("insert split: %w", err)
		}
		splits = append(splits, split)
	}
	return splits, nil
}
