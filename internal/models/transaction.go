package models

import (
	"time"
)

const DateLayout = "2006-01-02"

// Split is one category-tagged line of a transaction. Amounts are minor units;
// exactly one of Inflow and Outflow is nonzero.
type Split struct {
	ID         string  `json:"id" db:"public_id"`
	CategoryID string  `json:"category_id" db:"category_public_id"`
	Memo       *string `json:"memo" db:"memo"`
	Inflow     int64   `json:"inflow" db:"inflow"`
	Outflow    int64   `json:"outflow" db:"outflow"`
}

type Transaction struct {
	ID        string  `json:"id" db:"public_id"`
	BudgetID  string  `json:"budget_id" db:"budget_public_id"`
	AccountID string  `json:"account_id" db:"account_public_id"`
	Date      string  `json:"date" db:"tx_date"`
	Payee     *string `json:"payee" db:"payee"`
	Memo      *string `json:"memo" db:"memo"`
	Splits    []Split `json:"splits"`
}

type SplitInput struct {
	CategoryID string  `json:"category_id" validate:"required,len=32"`
	Memo       *string `json:"memo,omitempty"`
	Inflow     int64   `json:"inflow"`
	Outflow    int64   `json:"outflow"`
}

// SaveTransaction is the full replacement payload for create and update.
type SaveTransaction struct {
	BudgetID  string       `json:"budget_id" validate:"required,len=32"`
	AccountID string       `json:"account_id" validate:"required,len=32"`
	Date      string       `json:"date" validate:"required,datetime=2006-01-02"`
	Payee     *string      `json:"payee,omitempty"`
	Memo      *string      `json:"memo,omitempty"`
	Splits    []SplitInput `json:"splits" validate:"dive"`
}

// ParseDate parses the transaction date.
func (s SaveTransaction) ParseDate() (time.Time, error) {
	return time.Parse(DateLayout, s.Date)
}
