package recurring

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrRecurringNotFound = errors.New("recurring transaction not found")
	ErrRecurringInvalid  = errors.New("recurring transaction data is invalid")
)

type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func ValidKind(k Kind) bool {
	return k == KindIncome || k == KindExpense
}

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Advance moves a date forward by one period.
func (f Frequency) Advance(t time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return t.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return t.AddDate(0, 3, 0)
	case FrequencyYearly:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// RecurringTransaction is a template for money movements that repeat on a
// fixed cadence. Nothing runs on a schedule; the generate endpoint
// materializes occurrences on demand and advances NextDate.
type RecurringTransaction struct {
	Id          int
	Description string
	Merchant    string
	Amount      decimal.Decimal
	Currency    string
	AccountId   int
	CategoryId  int
	Kind        Kind
	Frequency   Frequency
	NextDate    time.Time
	Active      bool
	CreatedAt   time.Time
}
