package goal

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrGoalNotFound  = errors.New("goal not found")
	ErrGoalInvalid   = errors.New("goal data is invalid")
	ErrGoalNotActive = errors.New("goal is not active")
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Goal is a savings target. SavedAmount only moves through contributions and
// withdrawals; once it reaches TargetAmount the goal completes automatically.
type Goal struct {
	Id           int
	Name         string
	TargetAmount decimal.Decimal
	SavedAmount  decimal.Decimal
	Currency     string
	TargetDate   time.Time // zero = no deadline
	Icon         string
	Status       Status
	CreatedAt    time.Time
}

// Contribution moves money into (or, with Withdraw, out of) a goal. A source
// account makes the movement visible in that account's transaction history.
type Contribution struct {
	Amount          decimal.Decimal
	Withdraw        bool
	SourceAccountId int
	Note            string
}

// Remaining returns how much is still missing, never negative.
func (g Goal) Remaining() decimal.Decimal {
	remaining := g.TargetAmount.Sub(g.SavedAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// MonthsUntil counts the months left to the target date, rounding partial
// months up, minimum 1. ok=false when no deadline is set or it already passed.
func (g Goal) MonthsUntil(now time.Time) (int, bool) {
	if g.TargetDate.IsZero() || !g.TargetDate.After(now) {
		return 0, false
	}
	months := (g.TargetDate.Year()-now.Year())*12 + int(g.TargetDate.Month()) - int(now.Month())
	if g.TargetDate.Day() > now.Day() {
		months++
	}
	if months < 1 {
		months = 1
	}
	return months, true
}

// MonthlyTarget returns how much must be saved per month to reach the target
// on time. ok=false when there is no deadline or nothing left to save.
func (g Goal) MonthlyTarget(now time.Time) (decimal.Decimal, bool) {
	months, ok := g.MonthsUntil(now)
	if !ok {
		return decimal.Zero, false
	}
	remaining := g.Remaining()
	if remaining.IsZero() {
		return decimal.Zero, false
	}
	return remaining.Div(decimal.NewFromInt(int64(months))).Round(2), true
}
