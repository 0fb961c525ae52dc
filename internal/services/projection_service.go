package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/envelopezero/backend/internal/models"
)

type ProjectionService struct {
	db *sql.DB
}

func NewProjectionService(db *sql.DB) *ProjectionService {
	return &ProjectionService{db: db}
}

// ProjectAvailable is what remains in an envelope after activity.
func ProjectAvailable(assigned, activity int64) int64 {
	return assigned - activity
}

// MonthProjection returns one row per live category of the caller, including
// categories with no assignments or activity in the month.
func (s *ProjectionService) MonthProjection(ctx context.Context, identity models.Identity, monthText string) ([]models.CategoryProjection, error) {
	month, err := models.ParseMonth(monthText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	start, end := models.MonthBounds(month)

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.public_id,
		       COALESCE((
		           SELECT SUM(ca.amount)
		           FROM category_assignments ca
		           WHERE ca.category_id = c.id AND ca.month = $2 AND ca.deleted_at IS NULL
		       ), 0) AS assigned,
		       COALESCE((
		           SELECT SUM(s.outflow - s.inflow)
		           FROM transaction_splits s
		           JOIN transactions t ON t.id = s.transaction_id
		           WHERE s.category_id = c.id AND s.deleted_at IS NULL AND t.deleted_at IS NULL
		             AND t.tx_date >= $2 AND t.tx_date < $3
		       ), 0) AS activity
		FROM categories c
		WHERE c.user_id = $1 AND c.deleted_at IS NULL
		ORDER BY c.created_at`,
		identity.UserID, start.Format(models.DateLayout), end.Format(models.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("project month: %w", err)
	}
	defer rows.Close()

	projections := []models.CategoryProjection{}
	for rows.Next() {
		var p models.CategoryProjection
		if err := rows.Scan(&p.CategoryID, &p.Assigned, &p.Activity); err != nil {
			return nil, fmt.Errorf("scan projection: %w", err)
		}
		p.Available = ProjectAvailable(p.Assigned, p.Activity)
		projections = append(projections, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Printf("[PROJECTION] %s: %d categories", models.FormatMonth(month), len(projections))
	return projections, nil
}

// Dashboard sums every live split of the caller across all time.
func (s *ProjectionService) Dashboard(ctx context.Context, identity models.Identity) (*models.Dashboard, error) {
	var d models.Dashboard
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(s.inflow), 0), COALESCE(SUM(s.outflow), 0)
		FROM transaction_splits s
		JOIN transactions t ON t.id = s.transaction_id
		WHERE t.user_id = $1 AND t.deleted_at IS NULL AND s.deleted_at IS NULL`,
		identity.UserID,
	).Scan(&d.Inflow, &d.Outflow)
	if err != nil {
		return nil, fmt.Errorf("dashboard totals: %w", err)
	}
	d.Available = ProjectAvailable(d.Inflow, d.Outflow)
	return &d, nil
}
