package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/envelopezero/backend/internal/audit"
	"github.com/envelopezero/backend/internal/models"
)

// AssignmentService records money assigned to categories per month. Rows are
// additive: the effective assignment is the sum of all rows for a month.
type AssignmentService struct {
	db    *sql.DB
	audit *audit.AuditLogger
}

func NewAssignmentService(db *sql.DB, auditLogger *audit.AuditLogger) *AssignmentService {
	return &AssignmentService{db: db, audit: auditLogger}
}

func scanAssignment(row interface{ Scan(...any) error }) (*models.CategoryAssignment, error) {
	var a models.CategoryAssignment
	var month time.Time
	if err := row.Scan(&a.ID, &a.BudgetID, &a.CategoryID, &month, &a.Amount, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Month = models.FormatMonth(month)
	return &a, nil
}

func (s *AssignmentService) List(ctx context.Context, identity models.Identity) ([]models.CategoryAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT public_id, budget_public_id, category_public_id, month, amount, created_at
		FROM category_assignments
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY month DESC, created_at DESC`, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	assignments := []models.CategoryAssignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

func (s *AssignmentService) Create(ctx context.Context, identity models.Identity, input models.SaveCategoryAssignment) (*models.CategoryAssignment, error) {
	month, err := models.ParseMonth(input.Month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	assignment, err := scanAssignment(s.db.QueryRowContext(ctx, `
		INSERT INTO category_assignments (id, public_id, user_id, budget_id, budget_public_id, category_id, category_public_id, month, amount)
		SELECT $1, $2, b.user_id, b.id, b.public_id, c.id, c.public_id, $6, $7
		FROM budgets b
		JOIN categories c
		  ON c.public_id = $5 AND c.user_id = b.user_id AND c.budget_id = b.id AND c.deleted_at IS NULL
		WHERE b.public_id = $4 AND b.user_id = $3 AND b.deleted_at IS NULL
		RETURNING public_id, budget_public_id, category_public_id, month, amount, created_at`,
		models.NewID(), models.NewPublicID(), identity.UserID, input.BudgetID, input.CategoryID,
		month.Format(models.DateLayout), input.Amount,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidReference
	}
	if err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}

	s.audit.LogMutation(identity.PublicID, "category_assignment", assignment.ID, "CREATE")
	return assignment, nil
}
