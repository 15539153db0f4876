package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/currency"
	"github.com/centavo/centavo/pkg/transaction"
	"github.com/centavo/centavo/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// TransactionLister is the narrow view of the transaction service this
// package needs to compute spending inside a window.
type TransactionLister interface {
	List(ctx context.Context, filter transaction.Filter) ([]transaction.Transaction, error)
}

type BudgetService interface {
	Create(ctx context.Context, budget Budget) (Budget, error)
	Get(ctx context.Context, id int) (Budget, error)
	GetAll(ctx context.Context) ([]Budget, error)
	Update(ctx context.Context, budget Budget) (Budget, error)
	Delete(ctx context.Context, id int) error
	ProgressAll(ctx context.Context) ([]Progress, error)
}

type BudgetServiceImpl struct {
	repo         BudgetRepo
	transactions TransactionLister
	converter    *currency.Converter
	clock        utils.Clock
}

func NewBudgetService(repo BudgetRepo, transactions TransactionLister, converter *currency.Converter) *BudgetServiceImpl {
	return &BudgetServiceImpl{
		repo:         repo,
		transactions: transactions,
		converter:    converter,
		clock:        &utils.SystemClock{},
	}
}

func (s *BudgetServiceImpl) Create(ctx context.Context, budget Budget) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	budget, err = s.validate(ctx, budget)
	if err != nil {
		return Budget{}, err
	}
	return s.repo.Create(ctx, userId, budget)
}

func (s *BudgetServiceImpl) Get(ctx context.Context, id int) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *BudgetServiceImpl) GetAll(ctx context.Context) ([]Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *BudgetServiceImpl) Update(ctx context.Context, budget Budget) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	budget, err = s.validate(ctx, budget)
	if err != nil {
		return Budget{}, err
	}
	updated, err := s.repo.Update(ctx, userId, budget)
	if err != nil {
		log.Warnf("budget %d not updated for user %d: %v", budget.Id, userId, err)
		return Budget{}, err
	}
	return updated, nil
}

func (s *BudgetServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

// ProgressAll reports each active budget's standing within the period window
// containing today. Spending in other currencies is converted into the
// budget's own currency before it counts against the cap.
func (s *BudgetServiceImpl) ProgressAll(ctx context.Context) ([]Progress, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	budgets, err := s.repo.GetAll(ctx, currentUser.Id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	progress := make([]Progress, 0, len(budgets))
	for _, budget := range budgets {
		if !budget.IsActiveBetween(now, now) {
			continue
		}
		p, err := s.progressOf(ctx, budget, now, currentUser.Settings.WeekFirstDay)
		if err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, nil
}

func (s *BudgetServiceImpl) progressOf(ctx context.Context, budget Budget, refDate time.Time, weekFirstDay time.Weekday) (Progress, error) {
	windowStart, windowEnd := budget.PeriodWindow(refDate, weekFirstDay)
	transactions, err := s.transactions.List(ctx, transaction.Filter{
		From:       windowStart,
		To:         windowEnd,
		CategoryId: budget.CategoryId,
		Type:       transaction.TypeExpense,
	})
	if err != nil {
		return Progress{}, fmt.Errorf("failed to list transactions for budget %d: %w", budget.Id, err)
	}

	spent := decimal.Zero
	for _, t := range transactions {
		amount, err := s.converter.Convert(t.Amount, t.Currency, budget.Currency)
		if err != nil {
			return Progress{}, fmt.Errorf("failed to convert %s to %s: %w", t.Currency, budget.Currency, err)
		}
		spent = spent.Add(amount)
	}

	remaining := budget.Amount.Sub(spent)
	return Progress{
		Budget:      budget,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Spent:       spent,
		Remaining:   remaining,
		OverBudget:  remaining.IsNegative(),
	}, nil
}

func (s *BudgetServiceImpl) validate(ctx context.Context, budget Budget) (Budget, error) {
	if budget.CategoryId <= 0 {
		return Budget{}, fmt.Errorf("%w: category is required", ErrBudgetInvalid)
	}
	if !budget.Amount.IsPositive() {
		return Budget{}, fmt.Errorf("%w: amount must be positive", ErrBudgetInvalid)
	}
	if !ValidPeriod(budget.Period) {
		return Budget{}, fmt.Errorf("%w: unknown period %q", ErrBudgetInvalid, budget.Period)
	}
	if !budget.StartDate.IsZero() && !budget.EndDate.IsZero() && budget.EndDate.Before(budget.StartDate) {
		return Budget{}, fmt.Errorf("%w: end date is before start date", ErrBudgetInvalid)
	}
	if budget.Currency == "" {
		currentUser, err := user.CurrentUser(ctx)
		if err != nil {
			return Budget{}, fmt.Errorf("failed to get current user: %w", err)
		}
		budget.Currency = currentUser.Settings.PrimaryCurrency
	}
	if !currency.IsKnown(budget.Currency) {
		return Budget{}, fmt.Errorf("%w: unknown currency %q", ErrBudgetInvalid, budget.Currency)
	}
	return budget, nil
}
