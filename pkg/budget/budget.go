package budget

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrBudgetNotFound = errors.New("budget not found")
	ErrBudgetExists   = errors.New("a budget for this category and period already exists")
	ErrBudgetInvalid  = errors.New("budget data is invalid")
)

type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

func ValidPeriod(p Period) bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// Budget caps spending for one category per period. The cap applies to every
// window of the period between StartDate and EndDate.
type Budget struct {
	Id         int
	CategoryId int
	Amount     decimal.Decimal
	Currency   string
	Period     Period
	StartDate  time.Time
	EndDate    time.Time // zero = runs forever
	CreatedAt  time.Time
}

// IsActiveBetween reports whether the budget overlaps the given period.
// Zero dates leave the budget open-ended on that side.
func (b Budget) IsActiveBetween(startDate, endDate time.Time) bool {
	if !b.StartDate.IsZero() && b.StartDate.After(endDate) {
		return false
	}
	if !b.EndDate.IsZero() && b.EndDate.Before(startDate) {
		return false
	}
	return true
}

// PeriodWindow returns the inclusive date window of the budget period that
// contains date. Weekly windows start on weekFirstDay.
func (b Budget) PeriodWindow(date time.Time, weekFirstDay time.Weekday) (time.Time, time.Time) {
	year, month, day := date.Date()
	switch b.Period {
	case PeriodWeekly:
		midnight := time.Date(year, month, day, 0, 0, 0, 0, date.Location())
		delta := (int(date.Weekday()) - int(weekFirstDay) + 7) % 7
		start := midnight.AddDate(0, 0, -delta)
		return start, start.AddDate(0, 0, 6)
	case PeriodYearly:
		return time.Date(year, 1, 1, 0, 0, 0, 0, date.Location()),
			time.Date(year, 12, 31, 0, 0, 0, 0, date.Location())
	default:
		start := time.Date(year, month, 1, 0, 0, 0, 0, date.Location())
		return start, start.AddDate(0, 1, -1)
	}
}

// Progress is one budget's standing within the period window containing the
// reference date.
type Progress struct {
	Budget      Budget
	WindowStart time.Time
	WindowEnd   time.Time
	Spent       decimal.Decimal
	Remaining   decimal.Decimal
	OverBudget  bool
}
