package bill

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrBillNotFound  = errors.New("bill not found")
	ErrBillInvalid   = errors.New("bill data is invalid")
	ErrCycleNotFound = errors.New("billing cycle not found")
	ErrCycleInvalid  = errors.New("billing cycle data is invalid")
	// ErrCycleOpen means the account already has an open cycle; close it first.
	ErrCycleOpen = errors.New("account already has an open billing cycle")
)

type Recurrence string

const (
	RecurrenceNone      Recurrence = "none"
	RecurrenceWeekly    Recurrence = "weekly"
	RecurrenceMonthly   Recurrence = "monthly"
	RecurrenceQuarterly Recurrence = "quarterly"
	RecurrenceYearly    Recurrence = "yearly"
)

func ValidRecurrence(r Recurrence) bool {
	switch r {
	case RecurrenceNone, RecurrenceWeekly, RecurrenceMonthly, RecurrenceQuarterly, RecurrenceYearly:
		return true
	}
	return false
}

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusPaid     Status = "paid"
	// StatusOverdue is derived from the clock, never stored.
	StatusOverdue Status = "overdue"
)

// Bill is an expected charge. Recurring bills keep DueDate pointing at the
// next occurrence; paying one rolls the date forward one recurrence.
type Bill struct {
	Id              int
	Name            string
	Amount          decimal.Decimal
	Currency        string
	CategoryId      int
	DueDate         time.Time
	Recurrence      Recurrence
	AutoPay         bool
	Status          Status
	LinkedAccountId int
	CreatedAt       time.Time
}

// NextDueDate returns the due date advanced by one recurrence period.
func (b Bill) NextDueDate() time.Time {
	switch b.Recurrence {
	case RecurrenceWeekly:
		return b.DueDate.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return b.DueDate.AddDate(0, 1, 0)
	case RecurrenceQuarterly:
		return b.DueDate.AddDate(0, 3, 0)
	case RecurrenceYearly:
		return b.DueDate.AddDate(1, 0, 0)
	}
	return b.DueDate
}

// EffectiveStatus derives overdue from the clock; the stored status only ever
// holds upcoming or paid.
func (b Bill) EffectiveStatus(now time.Time) Status {
	if b.Status == StatusUpcoming && b.DueDate.Before(startOfDay(now)) {
		return StatusOverdue
	}
	return b.Status
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

type CycleStatus string

const (
	CycleOpen   CycleStatus = "open"
	CycleClosed CycleStatus = "closed"
	CyclePaid   CycleStatus = "paid"
)

// BillCycle is one statement period of a credit-card account. The statement
// balance is computed from the account's transactions when the cycle closes.
type BillCycle struct {
	Id               int
	AccountId        int
	StartDate        time.Time
	EndDate          time.Time
	StatementBalance decimal.Decimal
	MinimumDue       decimal.Decimal
	DueDate          time.Time
	Status           CycleStatus
}
