package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentInvalid  = errors.New("payment data is invalid")
)

// SourceType names the kind of obligation a payment settled.
type SourceType string

const (
	SourceBill            SourceType = "bill"
	SourceLiability       SourceType = "liability"
	SourceCreditCardCycle SourceType = "credit_card_cycle"
	SourceGoal            SourceType = "goal"
)

func ValidSourceType(s SourceType) bool {
	switch s {
	case SourceBill, SourceLiability, SourceCreditCardCycle, SourceGoal:
		return true
	}
	return false
}

// Payment is one settled amount against a bill, liability, credit-card cycle
// or goal. It is append-only history; editing a payment means deleting and
// recording a new one.
type Payment struct {
	Id         int
	SourceType SourceType
	SourceId   int
	Amount     decimal.Decimal
	Currency   string
	PaidAt     time.Time
	Note       string
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	SourceType SourceType
	SourceId   int
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}
