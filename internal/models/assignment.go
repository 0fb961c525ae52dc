package models

import "time"

type CategoryAssignment struct {
	ID         string    `json:"id" db:"public_id"`
	BudgetID   string    `json:"budget_id" db:"budget_public_id"`
	CategoryID string    `json:"category_id" db:"category_public_id"`
	Month      string    `json:"month" db:"month"`
	Amount     int64     `json:"amount" db:"amount"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type SaveCategoryAssignment struct {
	BudgetID   string `json:"budget_id" validate:"required,len=32"`
	CategoryID string `json:"category_id" validate:"required,len=32"`
	Month      string `json:"month" validate:"required"`
	Amount     int64  `json:"amount"`
}

// CategoryProjection is one envelope row of a month projection.
type CategoryProjection struct {
	CategoryID string `json:"category_id"`
	Assigned   int64  `json:"assigned"`
	Activity   int64  `json:"activity"`
	Available  int64  `json:"available"`
}

type Dashboard struct {
	Inflow    int64 `json:"inflow"`
	Outflow   int64 `json:"outflow"`
	Available int64 `json:"available"`
}
