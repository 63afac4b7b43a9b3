package finance

import (
	"strings"
	"time"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the direction of a ledger entry
type EntryType string

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

// IsValid checks if the entry type is known
func (t EntryType) IsValid() bool {
	return t == EntryIncome || t == EntryExpense
}

// LedgerEntry is one movement in the USD or MXN book. Income is stored
// positive and expense negative regardless of the sign the client sent.
type LedgerEntry struct {
	shared.BaseEntity
	Currency    shared.Currency `gorm:"type:varchar(3);not null;index:idx_ledger_currency_date,priority:1" json:"currency"`
	Date        time.Time       `gorm:"type:date;not null;index:idx_ledger_currency_date,priority:2" json:"date"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	EntryType   EntryType       `gorm:"type:varchar(10);not null" json:"entry_type"`
	BankAccount string          `gorm:"type:varchar(100);index" json:"bank_account"`
	Area        string          `gorm:"type:varchar(100)" json:"area"`
	Subarea     string          `gorm:"type:varchar(100)" json:"subarea"`
	Category    string          `gorm:"type:varchar(100)" json:"category"`
	Reference   string          `gorm:"type:varchar(200)" json:"reference"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// LedgerInput holds the editable ledger fields
type LedgerInput struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	EntryType   EntryType
	BankAccount string
	Area        string
	Subarea     string
	Category    string
	Reference   string
}

// NewLedgerEntry creates an entry in the given book
func NewLedgerEntry(currency shared.Currency, in LedgerInput, createdBy *uuid.UUID) (*LedgerEntry, error) {
	if !currency.IsValid() {
		return nil, shared.InvalidInput("unsupported currency %q", currency)
	}
	e := &LedgerEntry{BaseEntity: shared.NewBaseEntity(), Currency: currency, CreatedBy: createdBy}
	if err := e.Update(in); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the editable fields and reapplies the sign rule
func (e *LedgerEntry) Update(in LedgerInput) error {
	if !in.EntryType.IsValid() {
		return shared.InvalidInput("entry_type must be income or expense")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return shared.InvalidInput("description is required")
	}
	if in.Date.IsZero() {
		return shared.InvalidInput("date is required")
	}
	if in.Amount.IsZero() {
		return shared.InvalidInput("amount cannot be zero")
	}
	e.Date = in.Date
	e.Description = desc
	e.EntryType = in.EntryType
	e.Amount = SignedAmount(in.EntryType, in.Amount)
	e.BankAccount = strings.TrimSpace(in.BankAccount)
	e.Area = strings.TrimSpace(in.Area)
	e.Subarea = strings.TrimSpace(in.Subarea)
	e.Category = strings.TrimSpace(in.Category)
	e.Reference = strings.TrimSpace(in.Reference)
	e.Touch()
	return nil
}

// SignedAmount applies the ledger sign rule
func SignedAmount(t EntryType, amount decimal.Decimal) decimal.Decimal {
	abs := shared.RoundMoney(amount.Abs())
	if t == EntryExpense {
		return abs.Neg()
	}
	return abs
}

// BankBalance is the summary of one bank account
type BankBalance struct {
	BankAccount string          `json:"bank_account"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Balance     decimal.Decimal `json:"balance"`
}

// LedgerSummary totals a filtered set of entries. Expense is reported as a
// positive amount.
type LedgerSummary struct {
	Currency      shared.Currency `json:"currency"`
	Income        decimal.Decimal `json:"income"`
	Expense       decimal.Decimal `json:"expense"`
	Balance       decimal.Decimal `json:"balance"`
	ByBankAccount []BankBalance   `json:"by_bank_account"`
}

// NewLedgerSummary derives totals from per-account rows
func NewLedgerSummary(currency shared.Currency, accounts []BankBalance) LedgerSummary {
	s := LedgerSummary{
		Currency:      currency,
		Income:        decimal.Zero,
		Expense:       decimal.Zero,
		ByBankAccount: make([]BankBalance, 0, len(accounts)),
	}
	for _, a := range accounts {
		a.Expense = a.Expense.Abs()
		a.Balance = a.Income.Sub(a.Expense)
		s.Income = s.Income.Add(a.Income)
		s.Expense = s.Expense.Add(a.Expense)
		s.ByBankAccount = append(s.ByBankAccount, a)
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}
