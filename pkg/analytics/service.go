package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/account"
	"github.com/centavo/centavo/pkg/bill"
	"github.com/centavo/centavo/pkg/category"
	"github.com/centavo/centavo/pkg/currency"
	"github.com/centavo/centavo/pkg/goal"
	"github.com/centavo/centavo/pkg/liability"
	"github.com/centavo/centavo/pkg/payment"
	"github.com/centavo/centavo/pkg/transaction"
	"github.com/centavo/centavo/pkg/user"
	"github.com/shopspring/decimal"
)

const (
	defaultReportMonths = 6
	maxReportMonths     = 60
	upcomingBillDays    = 14
	upcomingGoalDays    = 30
)

type AccountReader interface {
	GetAll(ctx context.Context, includeArchived bool) ([]account.Account, error)
}

type LiabilityReader interface {
	GetAll(ctx context.Context, includeArchived bool) ([]liability.Liability, error)
}

type TransactionReader interface {
	List(ctx context.Context, filter transaction.Filter) ([]transaction.Transaction, error)
}

type PaymentReader interface {
	List(ctx context.Context, filter payment.Filter) ([]payment.Payment, error)
}

type CategoryReader interface {
	GetAll(ctx context.Context) ([]category.Category, error)
}

type BillReader interface {
	Upcoming(ctx context.Context, days int) ([]bill.Bill, error)
}

type GoalReader interface {
	GetAll(ctx context.Context, includeArchived bool) ([]goal.Goal, error)
}

type Service interface {
	Summary(ctx context.Context) (Summary, error)
	Cashflow(ctx context.Context, months int) (CashflowReport, error)
	Spending(ctx context.Context, from time.Time, to time.Time) (SpendingReport, error)
	NetWorth(ctx context.Context, months int) (NetWorthReport, error)
	Upcoming(ctx context.Context) (UpcomingReport, error)
}

// ServiceImpl derives every report from the other features' data. It owns no
// storage of its own; all amounts are converted into the user's display
// currency before they are aggregated.
type ServiceImpl struct {
	accounts     AccountReader
	liabilities  LiabilityReader
	transactions TransactionReader
	payments     PaymentReader
	categories   CategoryReader
	bills        BillReader
	goals        GoalReader
	converter    *currency.Converter
	clock        utils.Clock
}

func NewService(
	accounts AccountReader,
	liabilities LiabilityReader,
	transactions TransactionReader,
	payments PaymentReader,
	categories CategoryReader,
	bills BillReader,
	goals GoalReader,
	converter *currency.Converter,
) *ServiceImpl {
	return &ServiceImpl{
		accounts:     accounts,
		liabilities:  liabilities,
		transactions: transactions,
		payments:     payments,
		categories:   categories,
		bills:        bills,
		goals:        goals,
		converter:    converter,
		clock:        &utils.SystemClock{},
	}
}

func (s *ServiceImpl) Summary(ctx context.Context) (Summary, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get current user: %w", err)
	}
	display := current.Settings.EffectiveDisplayCurrency()

	accounts, err := s.accounts.GetAll(ctx, false)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list accounts: %w", err)
	}
	assets := decimal.Zero
	for _, acc := range accounts {
		value, err := s.converter.Convert(acc.Balance, acc.Currency, display)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to convert account %d balance: %w", acc.Id, err)
		}
		assets = assets.Add(value)
	}

	liabilities, err := s.liabilities.GetAll(ctx, false)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list liabilities: %w", err)
	}
	owed := decimal.Zero
	for _, l := range liabilities {
		value, err := s.converter.Convert(l.Balance, l.Currency, display)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to convert liability %d balance: %w", l.Id, err)
		}
		owed = owed.Add(value)
	}

	now := s.clock.Now()
	income, expense, err := s.flowBetween(ctx, startOfMonth(now), now, display)
	if err != nil {
		return Summary{}, err
	}
	net := income.Sub(expense)
	savingsRate := 0.0
	if income.IsPositive() {
		savingsRate, _ = net.Div(income).Round(4).Float64()
	}

	goals, err := s.goals.GetAll(ctx, false)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list goals: %w", err)
	}
	activeGoals := 0
	for _, g := range goals {
		if g.Status == goal.StatusActive {
			activeGoals++
		}
	}

	return Summary{
		Currency:        display,
		NetWorth:        assets.Sub(owed),
		Assets:          assets,
		Liabilities:     owed,
		MonthIncome:     income,
		MonthExpense:    expense,
		MonthNet:        net,
		SavingsRate:     savingsRate,
		AccountCount:    len(accounts),
		LiabilityCount:  len(liabilities),
		ActiveGoalCount: activeGoals,
	}, nil
}

func (s *ServiceImpl) Cashflow(ctx context.Context, months int) (CashflowReport, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return CashflowReport{}, fmt.Errorf("failed to get current user: %w", err)
	}
	display := current.Settings.EffectiveDisplayCurrency()
	months = clampMonths(months)

	now := s.clock.Now()
	first := startOfMonth(now).AddDate(0, -(months - 1), 0)
	entries, err := s.transactions.List(ctx, transaction.Filter{From: first, To: now})
	if err != nil {
		return CashflowReport{}, fmt.Errorf("failed to list transactions: %w", err)
	}

	points := make([]CashflowPoint, months)
	for i := range points {
		points[i] = CashflowPoint{
			Month:   first.AddDate(0, i, 0),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
			Net:     decimal.Zero,
		}
	}
	for _, entry := range entries {
		if entry.Type != transaction.TypeIncome && entry.Type != transaction.TypeExpense {
			continue
		}
		index := monthsBetween(first, entry.Date)
		if index < 0 || index >= months {
			continue
		}
		value, err := s.converter.Convert(entry.Amount, entry.Currency, display)
		if err != nil {
			return CashflowReport{}, fmt.Errorf("failed to convert transaction %d: %w", entry.Id, err)
		}
		if entry.Type == transaction.TypeIncome {
			points[index].Income = points[index].Income.Add(value)
		} else {
			points[index].Expense = points[index].Expense.Add(value)
		}
	}
	for i := range points {
		points[i].Net = points[i].Income.Sub(points[i].Expense)
	}

	return CashflowReport{Currency: display, Months: points}, nil
}

func (s *ServiceImpl) Spending(ctx context.Context, from time.Time, to time.Time) (SpendingReport, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return SpendingReport{}, fmt.Errorf("failed to get current user: %w", err)
	}
	display := current.Settings.EffectiveDisplayCurrency()

	now := s.clock.Now()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = startOfMonth(to)
	}
	if to.Before(from) {
		return SpendingReport{}, fmt.Errorf("%w: end date is before start date", ErrInvalidRange)
	}

	entries, err := s.transactions.List(ctx, transaction.Filter{
		From: from,
		To:   to,
		Type: transaction.TypeExpense,
	})
	if err != nil {
		return SpendingReport{}, fmt.Errorf("failed to list transactions: %w", err)
	}

	totals := make(map[int]decimal.Decimal)
	total := decimal.Zero
	for _, entry := range entries {
		value, err := s.converter.Convert(entry.Amount, entry.Currency, display)
		if err != nil {
			return SpendingReport{}, fmt.Errorf("failed to convert transaction %d: %w", entry.Id, err)
		}
		totals[entry.CategoryId] = totals[entry.CategoryId].Add(value)
		total = total.Add(value)
	}

	names, err := s.categoryNames(ctx)
	if err != nil {
		return SpendingReport{}, err
	}
	categories := make([]CategorySpending, 0, len(totals))
	for categoryId, amount := range totals {
		name, ok := names[categoryId]
		if !ok {
			name = "Uncategorized"
		}
		share := 0.0
		if total.IsPositive() {
			share, _ = amount.Div(total).Round(4).Float64()
		}
		categories = append(categories, CategorySpending{
			CategoryId:   categoryId,
			CategoryName: name,
			Total:        amount,
			Share:        share,
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		if !categories[i].Total.Equal(categories[j].Total) {
			return categories[i].Total.GreaterThan(categories[j].Total)
		}
		return categories[i].CategoryId < categories[j].CategoryId
	})

	return SpendingReport{
		From:       from,
		To:         to,
		Currency:   display,
		Total:      total,
		Categories: categories,
	}, nil
}

// NetWorth rebuilds the month-end trend by starting from today's balances and
// peeling transactions back off, month by month. Transfers cancel out across
// accounts; liability payments move debt, so they are peeled back too.
func (s *ServiceImpl) NetWorth(ctx context.Context, months int) (NetWorthReport, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return NetWorthReport{}, err
	}
	months = clampMonths(months)

	now := s.clock.Now()
	first := startOfMonth(now).AddDate(0, -(months - 1), 0)
	entries, err := s.transactions.List(ctx, transaction.Filter{From: first, To: now})
	if err != nil {
		return NetWorthReport{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	debtPayments, err := s.payments.List(ctx, payment.Filter{
		SourceType: payment.SourceLiability,
		From:       first,
		To:         now,
	})
	if err != nil {
		return NetWorthReport{}, fmt.Errorf("failed to list liability payments: %w", err)
	}

	// shift[i] is how much net worth moved during month i: income grows it,
	// expense shrinks it, and a liability payment means the debt used to be
	// that much higher.
	shift := make([]decimal.Decimal, months)
	for i := range shift {
		shift[i] = decimal.Zero
	}
	for _, entry := range entries {
		if entry.Type != transaction.TypeIncome && entry.Type != transaction.TypeExpense {
			continue
		}
		index := monthsBetween(first, entry.Date)
		if index < 0 || index >= months {
			continue
		}
		value, err := s.converter.Convert(entry.Amount, entry.Currency, summary.Currency)
		if err != nil {
			return NetWorthReport{}, fmt.Errorf("failed to convert transaction %d: %w", entry.Id, err)
		}
		if entry.Type == transaction.TypeIncome {
			shift[index] = shift[index].Add(value)
		} else {
			shift[index] = shift[index].Sub(value)
		}
	}
	for _, p := range debtPayments {
		index := monthsBetween(first, p.PaidAt)
		if index < 0 || index >= months {
			continue
		}
		value, err := s.converter.Convert(p.Amount, p.Currency, summary.Currency)
		if err != nil {
			return NetWorthReport{}, fmt.Errorf("failed to convert payment %d: %w", p.Id, err)
		}
		shift[index] = shift[index].Add(value)
	}

	points := make([]NetWorthPoint, months)
	value := summary.NetWorth
	for i := months - 1; i >= 0; i-- {
		points[i] = NetWorthPoint{Month: first.AddDate(0, i, 0), Value: value}
		value = value.Sub(shift[i])
	}

	return NetWorthReport{Currency: summary.Currency, Points: points}, nil
}

func (s *ServiceImpl) Upcoming(ctx context.Context) (UpcomingReport, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return UpcomingReport{}, fmt.Errorf("failed to get current user: %w", err)
	}
	display := current.Settings.EffectiveDisplayCurrency()
	now := s.clock.Now()
	today := startOfDay(now)

	dueBills, err := s.bills.Upcoming(ctx, upcomingBillDays)
	if err != nil {
		return UpcomingReport{}, fmt.Errorf("failed to list upcoming bills: %w", err)
	}
	items := make([]UpcomingItem, 0, len(dueBills))
	for _, b := range dueBills {
		amount, err := s.converter.Convert(b.Amount, b.Currency, display)
		if err != nil {
			return UpcomingReport{}, fmt.Errorf("failed to convert bill %d: %w", b.Id, err)
		}
		items = append(items, UpcomingItem{
			Kind:     ItemBill,
			Id:       b.Id,
			Name:     b.Name,
			Amount:   amount,
			Date:     b.DueDate,
			DaysLeft: daysUntil(today, b.DueDate),
		})
	}

	goals, err := s.goals.GetAll(ctx, false)
	if err != nil {
		return UpcomingReport{}, fmt.Errorf("failed to list goals: %w", err)
	}
	deadline := today.AddDate(0, 0, upcomingGoalDays)
	for _, g := range goals {
		if g.Status != goal.StatusActive || g.TargetDate.IsZero() {
			continue
		}
		if g.TargetDate.Before(today) || g.TargetDate.After(deadline) {
			continue
		}
		amount, err := s.converter.Convert(g.Remaining(), g.Currency, display)
		if err != nil {
			return UpcomingReport{}, fmt.Errorf("failed to convert goal %d: %w", g.Id, err)
		}
		items = append(items, UpcomingItem{
			Kind:     ItemGoal,
			Id:       g.Id,
			Name:     g.Name,
			Amount:   amount,
			Date:     g.TargetDate,
			DaysLeft: daysUntil(today, g.TargetDate),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		return items[i].Name < items[j].Name
	})

	return UpcomingReport{Currency: display, Items: items}, nil
}

// flowBetween sums income and expense over a window, converted to the target
// currency.
func (s *ServiceImpl) flowBetween(ctx context.Context, from time.Time, to time.Time, target string) (decimal.Decimal, decimal.Decimal, error) {
	entries, err := s.transactions.List(ctx, transaction.Filter{From: from, To: to})
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to list transactions: %w", err)
	}
	income := decimal.Zero
	expense := decimal.Zero
	for _, entry := range entries {
		if entry.Type != transaction.TypeIncome && entry.Type != transaction.TypeExpense {
			continue
		}
		value, err := s.converter.Convert(entry.Amount, entry.Currency, target)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("failed to convert transaction %d: %w", entry.Id, err)
		}
		if entry.Type == transaction.TypeIncome {
			income = income.Add(value)
		} else {
			expense = expense.Add(value)
		}
	}
	return income, expense, nil
}

func (s *ServiceImpl) categoryNames(ctx context.Context) (map[int]string, error) {
	categories, err := s.categories.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	names := make(map[int]string, len(categories))
	for _, c := range categories {
		names[c.Id] = c.Name
	}
	return names, nil
}

func clampMonths(months int) int {
	if months <= 0 {
		return defaultReportMonths
	}
	if months > maxReportMonths {
		return maxReportMonths
	}
	return months
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// monthsBetween counts whole calendar months from the month of `first` to the
// month of `t`.
func monthsBetween(first time.Time, t time.Time) int {
	return (t.Year()-first.Year())*12 + int(t.Month()-first.Month())
}

func daysUntil(today time.Time, date time.Time) int {
	return int(startOfDay(date).Sub(today).Hours() / 24)
}
