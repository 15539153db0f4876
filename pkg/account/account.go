package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrAccountNotFound = errors.New("account not found")

type Type string

const (
	TypeChecking   Type = "checking"
	TypeSavings    Type = "savings"
	TypeCash       Type = "cash"
	TypeCreditCard Type = "credit_card"
	TypeInvestment Type = "investment"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Account is a money container. Balance is derived state: it is only written
// by the transaction event subscriber, never directly by API calls, so it
// always agrees with the transaction history. Currency is fixed at creation.
type Account struct {
	Id        int
	Name      string
	Type      Type
	Currency  string
	Balance   decimal.Decimal
	Icon      string
	Color     string
	Position  int
	Status    Status
	CreatedAt time.Time
}

func ValidType(t Type) bool {
	switch t {
	case TypeChecking, TypeSavings, TypeCash, TypeCreditCard, TypeInvestment:
		return true
	}
	return false
}

// BalanceSummary totals the active accounts in a single currency.
type BalanceSummary struct {
	Currency string
	Total    decimal.Decimal
	Accounts []ConvertedBalance
}

// ConvertedBalance pairs an account's native balance with its value in the
// summary currency.
type ConvertedBalance struct {
	AccountId int
	Name      string
	Balance   decimal.Decimal
	Currency  string
	Converted decimal.Decimal
}
