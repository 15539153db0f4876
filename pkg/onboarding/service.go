package onboarding

import (
	"context"
	"fmt"

	"github.com/centavo/centavo/pkg/account"
	"github.com/centavo/centavo/pkg/budget"
	"github.com/centavo/centavo/pkg/user"
	log "github.com/sirupsen/logrus"
)

type AccountReader interface {
	GetAll(ctx context.Context, includeArchived bool) ([]account.Account, error)
}

type BudgetReader interface {
	GetAll(ctx context.Context) ([]budget.Budget, error)
}

// UserStore is the slice of the user service onboarding needs: reading the
// current user and persisting the step it parked on.
type UserStore interface {
	GetCurrentUser(ctx context.Context) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
}

type Service interface {
	State(ctx context.Context) (State, error)
	SetStep(ctx context.Context, step user.OnboardingStep) (State, error)
	Complete(ctx context.Context) (State, error)
}

type ServiceImpl struct {
	users    UserStore
	accounts AccountReader
	budgets  BudgetReader
}

func NewService(users UserStore, accounts AccountReader, budgets BudgetReader) *ServiceImpl {
	return &ServiceImpl{users: users, accounts: accounts, budgets: budgets}
}

func (s *ServiceImpl) State(ctx context.Context) (State, error) {
	current, err := s.users.GetCurrentUser(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.stateOf(ctx, current)
}

func (s *ServiceImpl) SetStep(ctx context.Context, step user.OnboardingStep) (State, error) {
	if !validStep(step) {
		return State{}, fmt.Errorf("%w: %q", ErrStepInvalid, step)
	}
	current, err := s.users.GetCurrentUser(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to get current user: %w", err)
	}
	// done is terminal; a finished user re-entering the wizard would lose
	// that state silently
	if current.Settings.Onboarding == user.OnboardingDone {
		return s.stateOf(ctx, current)
	}

	current.Settings.Onboarding = step
	updated, err := s.users.UpdateUser(ctx, current)
	if err != nil {
		return State{}, fmt.Errorf("failed to store onboarding step: %w", err)
	}
	log.Debugf("onboarding step set to %s", step)
	return s.stateOf(ctx, updated)
}

func (s *ServiceImpl) Complete(ctx context.Context) (State, error) {
	current, err := s.users.GetCurrentUser(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if current.Settings.PrimaryCurrency == "" {
		return State{}, fmt.Errorf("%w: a primary currency must be chosen", ErrIncomplete)
	}
	if current.Settings.Onboarding != user.OnboardingDone {
		current.Settings.Onboarding = user.OnboardingDone
		current, err = s.users.UpdateUser(ctx, current)
		if err != nil {
			return State{}, fmt.Errorf("failed to complete onboarding: %w", err)
		}
		log.Debug("onboarding completed")
	}
	return s.stateOf(ctx, current)
}

func (s *ServiceImpl) stateOf(ctx context.Context, current user.User) (State, error) {
	accounts, err := s.accounts.GetAll(ctx, false)
	if err != nil {
		return State{}, fmt.Errorf("failed to list accounts: %w", err)
	}
	budgets, err := s.budgets.GetAll(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to list budgets: %w", err)
	}

	step := current.Settings.Onboarding
	if step == "" {
		step = user.OnboardingWelcome
	}
	return State{
		Step:           step,
		Completed:      step == user.OnboardingDone,
		CurrencyChosen: current.Settings.PrimaryCurrency != "",
		HasAccounts:    len(accounts) > 0,
		HasBudgets:     len(budgets) > 0,
	}, nil
}
