package goal

import (
	"context"
	"fmt"

	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/currency"
	"github.com/centavo/centavo/pkg/payment"
	"github.com/centavo/centavo/pkg/transaction"
	"github.com/centavo/centavo/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PaymentRecorder is the slice of the payment service used for contribution
// history.
type PaymentRecorder interface {
	Record(ctx context.Context, payment payment.Payment) (payment.Payment, error)
	List(ctx context.Context, filter payment.Filter) ([]payment.Payment, error)
}

// TransactionCreator mirrors contributions into the source account's history.
type TransactionCreator interface {
	Create(ctx context.Context, transaction transaction.Transaction) (transaction.Transaction, error)
}

type Service interface {
	Create(ctx context.Context, goal Goal) (Goal, error)
	Get(ctx context.Context, id int) (Goal, error)
	GetAll(ctx context.Context, includeArchived bool) ([]Goal, error)
	Update(ctx context.Context, goal Goal) (Goal, error)
	Delete(ctx context.Context, id int) error
	Contribute(ctx context.Context, goalId int, contribution Contribution) (Goal, error)
	Contributions(ctx context.Context, goalId int) ([]payment.Payment, error)
}

type ServiceImpl struct {
	repo         Repository
	payments     PaymentRecorder
	transactions TransactionCreator
	clock        utils.Clock
}

func NewService(repo Repository, payments PaymentRecorder, transactions TransactionCreator) *ServiceImpl {
	return &ServiceImpl{
		repo:         repo,
		payments:     payments,
		transactions: transactions,
		clock:        &utils.SystemClock{},
	}
}

func (s *ServiceImpl) Create(ctx context.Context, goal Goal) (Goal, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Goal{}, fmt.Errorf("failed to get current user: %w", err)
	}
	goal, err = s.validate(ctx, goal)
	if err != nil {
		return Goal{}, err
	}
	return s.repo.Create(ctx, userId, goal)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Goal, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Goal{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) GetAll(ctx context.Context, includeArchived bool) ([]Goal, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId, includeArchived)
}

func (s *ServiceImpl) Update(ctx context.Context, goal Goal) (Goal, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Goal{}, fmt.Errorf("failed to get current user: %w", err)
	}
	goal, err = s.validate(ctx, goal)
	if err != nil {
		return Goal{}, err
	}
	return s.repo.Update(ctx, userId, goal)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

// Contribute moves money into the goal (or out with Withdraw). Saved amount
// floors at zero on withdrawals; reaching the target completes the goal.
func (s *ServiceImpl) Contribute(ctx context.Context, goalId int, contribution Contribution) (Goal, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Goal{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !contribution.Amount.IsPositive() {
		return Goal{}, fmt.Errorf("%w: contribution amount must be positive", ErrGoalInvalid)
	}

	goal, err := s.repo.Get(ctx, userId, goalId)
	if err != nil {
		return Goal{}, err
	}
	if goal.Status != StatusActive {
		return Goal{}, fmt.Errorf("%w: goal %d is %s", ErrGoalNotActive, goal.Id, goal.Status)
	}

	saved := goal.SavedAmount
	if contribution.Withdraw {
		saved = saved.Sub(contribution.Amount)
		if saved.IsNegative() {
			saved = decimal.Zero
		}
	} else {
		saved = saved.Add(contribution.Amount)
	}

	status := goal.Status
	if saved.GreaterThanOrEqual(goal.TargetAmount) {
		status = StatusCompleted
		log.Infof("goal %d reached its target of %s %s", goal.Id, goal.TargetAmount, goal.Currency)
	}

	if err := s.repo.UpdateProgress(ctx, userId, goalId, saved, status); err != nil {
		return Goal{}, err
	}
	goal.SavedAmount = saved
	goal.Status = status

	if !contribution.Withdraw {
		_, err = s.payments.Record(ctx, payment.Payment{
			SourceType: payment.SourceGoal,
			SourceId:   goal.Id,
			Amount:     contribution.Amount,
			Currency:   goal.Currency,
			PaidAt:     s.clock.Now(),
			Note:       contribution.Note,
		})
		if err != nil {
			return goal, fmt.Errorf("goal %d updated but contribution history failed: %w", goal.Id, err)
		}
	}

	if contribution.SourceAccountId != 0 {
		if err := s.mirrorToAccount(ctx, goal, contribution); err != nil {
			return goal, err
		}
	}
	return goal, nil
}

func (s *ServiceImpl) Contributions(ctx context.Context, goalId int) ([]payment.Payment, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	// ensure the goal exists and belongs to the user before exposing history
	if _, err := s.repo.Get(ctx, userId, goalId); err != nil {
		return nil, err
	}
	return s.payments.List(ctx, payment.Filter{SourceType: payment.SourceGoal, SourceId: goalId})
}

// mirrorToAccount books the contribution against the source account, so the
// account balance follows the money set aside for the goal.
func (s *ServiceImpl) mirrorToAccount(ctx context.Context, goal Goal, contribution Contribution) error {
	transactionType := transaction.TypeExpense
	description := "Goal contribution: " + goal.Name
	if contribution.Withdraw {
		transactionType = transaction.TypeIncome
		description = "Goal withdrawal: " + goal.Name
	}
	_, err := s.transactions.Create(ctx, transaction.Transaction{
		AccountId:   contribution.SourceAccountId,
		Type:        transactionType,
		Amount:      contribution.Amount,
		Date:        s.clock.Now(),
		Description: description,
		Notes:       contribution.Note,
	})
	if err != nil {
		return fmt.Errorf("goal %d updated but account transaction failed: %w", goal.Id, err)
	}
	return nil
}

func (s *ServiceImpl) validate(ctx context.Context, goal Goal) (Goal, error) {
	if goal.Name == "" {
		return Goal{}, fmt.Errorf("%w: name is required", ErrGoalInvalid)
	}
	if !goal.TargetAmount.IsPositive() {
		return Goal{}, fmt.Errorf("%w: target amount must be positive", ErrGoalInvalid)
	}
	if goal.SavedAmount.IsNegative() {
		return Goal{}, fmt.Errorf("%w: saved amount must not be negative", ErrGoalInvalid)
	}
	if goal.Status == "" {
		goal.Status = StatusActive
	}
	if !ValidStatus(goal.Status) {
		return Goal{}, fmt.Errorf("%w: unknown status %q", ErrGoalInvalid, goal.Status)
	}
	if goal.Currency == "" {
		currentUser, err := user.CurrentUser(ctx)
		if err != nil {
			return Goal{}, fmt.Errorf("failed to get current user: %w", err)
		}
		goal.Currency = currentUser.Settings.PrimaryCurrency
	}
	if !currency.IsKnown(goal.Currency) {
		return Goal{}, fmt.Errorf("%w: unknown currency %q", ErrGoalInvalid, goal.Currency)
	}
	return goal, nil
}
