package analytics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRange is returned when a report window makes no sense, e.g. the
// end date falls before the start date.
var ErrInvalidRange = errors.New("invalid report range")

// Summary is the dashboard headline: where the user stands right now. All
// amounts are expressed in the report currency.
type Summary struct {
	Currency     string
	NetWorth     decimal.Decimal
	Assets       decimal.Decimal
	Liabilities  decimal.Decimal
	MonthIncome  decimal.Decimal
	MonthExpense decimal.Decimal
	MonthNet     decimal.Decimal
	// SavingsRate is MonthNet / MonthIncome, zero when nothing was earned.
	SavingsRate     float64
	AccountCount    int
	LiabilityCount  int
	ActiveGoalCount int
}

// CashflowPoint aggregates one calendar month of money in and money out.
type CashflowPoint struct {
	Month   time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// CashflowReport is a month-by-month series, oldest first, with empty months
// zero-filled so charts never skip a beat.
type CashflowReport struct {
	Currency string
	Months   []CashflowPoint
}

// CategorySpending is one category's share of the spending in a window.
type CategorySpending struct {
	CategoryId   int
	CategoryName string
	Total        decimal.Decimal
	// Share of the window's total spending, 0..1.
	Share float64
}

// SpendingReport breaks a date window's expenses down by category, largest
// first.
type SpendingReport struct {
	From       time.Time
	To         time.Time
	Currency   string
	Total      decimal.Decimal
	Categories []CategorySpending
}

// NetWorthPoint is the reconstructed net worth at the end of one month. The
// point for the current month reflects the state right now.
type NetWorthPoint struct {
	Month time.Time
	Value decimal.Decimal
}

// NetWorthReport is the month-end trend, oldest first.
type NetWorthReport struct {
	Currency string
	Points   []NetWorthPoint
}

// ItemKind tags what an upcoming item refers to.
type ItemKind string

const (
	ItemBill ItemKind = "bill"
	ItemGoal ItemKind = "goal"
)

// UpcomingItem is one thing that needs money soon: a bill falling due or a
// goal deadline approaching. DaysLeft is negative when already overdue.
type UpcomingItem struct {
	Kind     ItemKind
	Id       int
	Name     string
	Amount   decimal.Decimal
	Date     time.Time
	DaysLeft int
}

// UpcomingReport lists what is due soon, soonest first.
type UpcomingReport struct {
	Currency string
	Items    []UpcomingItem
}
