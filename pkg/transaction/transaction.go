package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionInvalid  = errors.New("transaction data is invalid")
)

type Type string

const (
	TypeIncome   Type = "income"
	TypeExpense  Type = "expense"
	TypeTransfer Type = "transfer"
)

func ValidType(t Type) bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

type Status string

const (
	StatusPending Status = "pending"
	StatusCleared Status = "cleared"
)

func ValidStatus(s Status) bool {
	return s == StatusPending || s == StatusCleared
}

// Transaction is a single money movement. Amount is always the absolute
// value; the direction comes from Type. Currency always matches the account.
type Transaction struct {
	Id                int
	AccountId         int
	TransferAccountId int // receiving account, transfers only
	CategoryId        int // 0 = uncategorized
	Type              Type
	Status            Status
	Amount            decimal.Decimal
	Currency          string
	Date              time.Time
	Description       string
	Merchant          string
	Notes             string
	RecurringId       int    // recurring template that generated this entry, if any
	ImportBatchId     string // CSV import run this entry came from, if any
	CreatedAt         time.Time
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	From       time.Time
	To         time.Time
	AccountId  int
	CategoryId int
	Type       Type
	Status     Status
	// Search matches case-insensitively against description and merchant.
	Search string
	Limit  int
	Offset int
}
