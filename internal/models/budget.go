package models

import "time"

type Budget struct {
	ID           string    `json:"id" db:"public_id"`
	Name         string    `json:"name" db:"name"`
	CurrencyCode string    `json:"currency_code" db:"currency_code"`
	IsDefault    bool      `json:"is_default" db:"is_default"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type SaveBudget struct {
	Name         string `json:"name" validate:"required,max=200"`
	CurrencyCode string `json:"currency_code,omitempty" validate:"omitempty,len=3,alpha"`
}

const (
	DefaultBudgetName   = "My Budget"
	DefaultCurrencyCode = "USD"
)
