package liability

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrLiabilityNotFound = errors.New("liability not found")
	ErrLiabilityInvalid  = errors.New("liability data is invalid")
	// ErrNeverAmortizes means the proposed payment does not even cover the
	// monthly interest, so the balance would grow forever.
	ErrNeverAmortizes = errors.New("payment does not cover the monthly interest")
)

type Type string

const (
	TypeLoan       Type = "loan"
	TypeCreditCard Type = "credit_card"
	TypeMortgage   Type = "mortgage"
	TypeOther      Type = "other"
)

func ValidType(t Type) bool {
	switch t {
	case TypeLoan, TypeCreditCard, TypeMortgage, TypeOther:
		return true
	}
	return false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusPaidOff  Status = "paid_off"
	StatusArchived Status = "archived"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusPaidOff, StatusArchived:
		return true
	}
	return false
}

// Liability is a debt being paid down. Balance only moves through recorded
// payments; hitting zero flips the status to paid_off.
type Liability struct {
	Id             int
	Name           string
	Type           Type
	Principal      decimal.Decimal
	Balance        decimal.Decimal
	Currency       string
	InterestRate   decimal.Decimal // annual percentage rate
	MinimumPayment decimal.Decimal
	DueDay         int // day of month, 1..28 so every month has it
	Status         Status
	CreatedAt      time.Time
}

// Payoff is the projected cost of clearing the balance with a fixed monthly
// payment.
type Payoff struct {
	Months        int
	TotalInterest decimal.Decimal
	TotalPaid     decimal.Decimal
}

// payoffHorizonMonths caps the projection loop. A century of payments means
// the input is effectively non-amortizing.
const payoffHorizonMonths = 1200

// NextDueDate returns the next occurrence of DueDay on or after now's date.
func (l Liability) NextDueDate(now time.Time) time.Time {
	if l.DueDay == 0 {
		return time.Time{}
	}
	due := time.Date(now.Year(), now.Month(), l.DueDay, 0, 0, 0, 0, now.Location())
	if l.DueDay < now.Day() {
		due = due.AddDate(0, 1, 0)
	}
	return due
}

// ProjectPayoff simulates paying monthlyPayment against the balance with
// interest compounding monthly at APR/12. Interest is rounded to cents each
// month the way statements do.
func (l Liability) ProjectPayoff(monthlyPayment decimal.Decimal) (Payoff, error) {
	if !monthlyPayment.IsPositive() {
		return Payoff{}, ErrLiabilityInvalid
	}
	balance := l.Balance
	if !balance.IsPositive() {
		return Payoff{TotalInterest: decimal.Zero, TotalPaid: decimal.Zero}, nil
	}

	monthlyRate := l.InterestRate.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
	if monthlyRate.IsPositive() && !monthlyPayment.GreaterThan(balance.Mul(monthlyRate)) {
		return Payoff{}, ErrNeverAmortizes
	}

	totalInterest := decimal.Zero
	months := 0
	for balance.IsPositive() {
		months++
		if months > payoffHorizonMonths {
			return Payoff{}, ErrNeverAmortizes
		}
		interest := balance.Mul(monthlyRate).Round(2)
		totalInterest = totalInterest.Add(interest)
		balance = balance.Add(interest).Sub(monthlyPayment)
	}

	return Payoff{
		Months:        months,
		TotalInterest: totalInterest,
		TotalPaid:     l.Balance.Add(totalInterest),
	}, nil
}
