package models

import (
	"time"
)

type Account struct {
	ID        string    `json:"id" db:"public_id"`
	BudgetID  string    `json:"budget_id" db:"budget_public_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type SaveAccount struct {
	BudgetID string `json:"budget_id" validate:"required,len=32"`
	Name     string `json:"name" validate:"required,max=200"`
}

type Supercategory struct {
	ID        string    `json:"id" db:"public_id"`
	BudgetID  string    `json:"budget_id" db:"budget_public_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type SaveSupercategory struct {
	BudgetID string `json:"budget_id" validate:"required,len=32"`
	Name     string `json:"name" validate:"required,max=200"`
}

// Category always lives in the same budget as its supercategory.
type Category struct {
	ID              string    `json:"id" db:"public_id"`
	BudgetID        string    `json:"budget_id" db:"budget_public_id"`
	SupercategoryID string    `json:"supercategory_id" db:"supercategory_public_id"`
	Name            string    `json:"name" db:"name"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type SaveCategory struct {
	BudgetID        string `json:"budget_id" validate:"required,len=32"`
	SupercategoryID string `json:"supercategory_id" validate:"required,len=32"`
	Name            string `json:"name" validate:"required,max=200"`
}
