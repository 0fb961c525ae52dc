package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/envelopezero/backend/internal/audit"
	"github.com/envelopezero/backend/internal/models"
)

const (
	supercategoryColumns = `public_id, budget_public_id, name, created_at, updated_at`
	categoryColumns      = `public_id, budget_public_id, supercategory_public_id, name, created_at, updated_at`
)

// CategoryService manages supercategories and the categories grouped under them.
type CategoryService struct {
	db    *sql.DB
	audit *audit.AuditLogger
}

func NewCategoryService(db *sql.DB, auditLogger *audit.AuditLogger) *CategoryService {
	return &CategoryService{db: db, audit: auditLogger}
}

func scanSupercategory(row interface{ Scan(...any) error }) (*models.Supercategory, error) {
	var sc models.Supercategory
	if err := row.Scan(&sc.ID, &sc.BudgetID, &sc.Name, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return nil, err
	}
	return &sc, nil
}

func scanCategory(row interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.BudgetID, &c.SupercategoryID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryService) ListSupercategories(ctx context.Context, identity models.Identity) ([]models.Supercategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+supercategoryColumns+`
		FROM supercategories
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at`, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list supercategories: %w", err)
	}
	defer rows.Close()

	supercategories := []models.Supercategory{}
	for rows.Next() {
		sc, err := scanSupercategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supercategory: %w", err)
		}
		supercategories = append(supercategories, *sc)
	}
	return supercategories, rows.Err()
}

func (s *CategoryService) CreateSupercategory(ctx context.Context, identity models.Identity, input models.SaveSupercategory) (*models.Supercategory, error) {
	sc, err := scanSupercategory(s.db.QueryRowContext(ctx, `
		INSERT INTO supercategories (id, public_id, user_id, budget_id, budget_public_id, name)
		SELECT $1, $2, b.user_id, b.id, b.public_id, $5
		FROM budgets b
		WHERE b.public_id = $4 AND b.user_id = $3 AND b.deleted_at IS NULL
		RETURNING `+supercategoryColumns,
		models.NewID(), models.NewPublicID(), identity.UserID, input.BudgetID, input.Name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidReference
	}
	if err != nil {
		return nil, fmt.Errorf("insert supercategory: %w", err)
	}

	s.audit.LogMutation(identity.PublicID, "supercategory", sc.ID, "CREATE")
	return sc, nil
}

func (s *CategoryService) UpdateSupercategory(ctx context.Context, identity models.Identity, id string, input models.SaveSupercategory) (*models.Supercategory, error) {
	sc, err := scanSupercategory(s.db.QueryRowContext(ctx, `
		UPDATE supercategories sc
		SET budget_id = b.id, budget_public_id = b.public_id, name = $4, updated_at = NOW()
		FROM budgets b
		WHERE sc.public_id = $1 AND sc.user_id = $2 AND sc.deleted_at IS NULL
		  AND b.public_id = $3 AND b.user_id = $2 AND b.deleted_at IS NULL
		RETURNING sc.public_id, sc.budget_public_id, sc.name, sc.created_at, sc.updated_at`,
		id, identity.UserID, input.BudgetID, input.Name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidReference
	}
	if err != nil {
		return nil, fmt.Errorf("update supercategory: %w", err)
	}

	s.audit.LogMutation(identity.PublicID, "supercategory", sc.ID, "UPDATE")
	return sc, nil
}

func (s *CategoryService) DeleteSupercategory(ctx context.Context, identity models.Identity, id string) error {
	return softDelete(ctx, s.db, s.audit, identity, "supercategories", "supercategory", id)
}

func (s *CategoryService) ListCategories(ctx context.Context, identity models.Identity) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at`, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// CreateCategory requires the supercategory to live in the same budget.
func (s *CategoryService) CreateCategory(ctx context.Context, identity models.Identity, input models.SaveCategory) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, public_id, user_id, budget_id, budget_public_id, supercategory_id, supercategory_public_id, name)
		SELECT $1, $2, b.user_id, b.id, b.public_id, sc.id, sc.public_id, $6
		FROM budgets b
		JOIN supercategories sc
		  ON sc.public_id = $5 AND sc.user_id = b.user_id AND sc.budget_id = b.id AND sc.deleted_at IS NULL
		WHERE b.public_id = $4 AND b.user_id = $3 AND b.deleted_at IS NULL
		RETURNING `+categoryColumns,
		models.NewID(), models.NewPublicID(), identity.UserID, input.BudgetID, input.SupercategoryID, input.Name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidReference
	}
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	s.audit.LogMutation(identity.PublicID, "category", c.ID, "CREATE")
	return c, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, identity models.Identity, id string, input models.SaveCategory) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, `
		UPDATE categories c
		SET budget_id = b.id, budget_public_id = b.public_id,
		    supercategory_id = sc.id, supercategory_public_id = sc.public_id,
		    name = $5, updated_at = NOW()
		FROM budgets b
		JOIN supercategories sc
		  ON sc.public_id = $4 AND sc.user_id = b.user_id AND sc.budget_id = b.id AND sc.deleted_at IS NULL
		WHERE c.public_id = $1 AND c.user_id = $2 AND c.deleted_at IS NULL
		  AND b.public_id = $3 AND b.user_id = $2 AND b.deleted_at IS NULL
		RETURNING c.public_id, c.budget_public_id, c.supercategory_public_id, c.name, c.created_at, c.updated_at`,
		id, identity.UserID, input.BudgetID, input.SupercategoryID, input.Name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidReference
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	s.audit.LogMutation(identity.PublicID, "category", c.ID, "UPDATE")
	return c, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, identity models.Identity, id string) error {
	return softDelete(ctx, s.db, s.audit, identity, "categories", "category", id)
}
