package onboarding

import (
	"context"
	"testing"

	"github.com/centavo/centavo/pkg/account"
	"github.com/centavo/centavo/pkg/budget"
	"github.com/centavo/centavo/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1, Username: "test_user"})

type userStoreStub struct {
	user    user.User
	updates int
}

func (s *userStoreStub) GetCurrentUser(ctx context.Context) (user.User, error) {
	return s.user, nil
}

func (s *userStoreStub) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	s.user = u
	s.updates++
	return u, nil
}

type accountReaderStub struct {
	accounts []account.Account
}

func (s *accountReaderStub) GetAll(ctx context.Context, includeArchived bool) ([]account.Account, error) {
	return s.accounts, nil
}

type budgetReaderStub struct {
	budgets []budget.Budget
}

func (s *budgetReaderStub) GetAll(ctx context.Context) ([]budget.Budget, error) {
	return s.budgets, nil
}

func setup(u user.User) (*ServiceImpl, *userStoreStub, *accountReaderStub, *budgetReaderStub) {
	users := &userStoreStub{user: u}
	accounts := &accountReaderStub{}
	budgets := &budgetReaderStub{}
	return NewService(users, accounts, budgets), users, accounts, budgets
}

func TestState_newUser(t *testing.T) {
	// given
	service, _, _, _ := setup(user.User{Id: 1, Username: "test_user"})

	// when
	state, err := service.State(ctx)

	// then
	require.NoError(t, err)
	assert.Equal(t, user.OnboardingWelcome, state.Step)
	assert.False(t, state.Completed)
	assert.False(t, state.CurrencyChosen)
	assert.False(t, state.HasAccounts)
	assert.False(t, state.HasBudgets)
}

func TestState_flagsFollowData(t *testing.T) {
	// given
	service, _, accounts, budgets := setup(user.User{
		Id:       1,
		Username: "test_user",
		Settings: user.Settings{PrimaryCurrency: "USD", Onboarding: user.OnboardingAccounts},
	})
	accounts.accounts = []account.Account{{Id: 1, Name: "Checking"}}
	budgets.budgets = []budget.Budget{{Id: 1}}

	// when
	state, err := service.State(ctx)

	// then
	require.NoError(t, err)
	assert.Equal(t, user.OnboardingAccounts, state.Step)
	assert.True(t, state.CurrencyChosen)
	assert.True(t, state.HasAccounts)
	assert.True(t, state.HasBudgets)
	assert.False(t, state.Completed)
}

func TestSetStep(t *testing.T) {
	// given
	service, users, _, _ := setup(user.User{Id: 1, Username: "test_user"})

	// when
	state, err := service.SetStep(ctx, user.OnboardingBudget)

	// then
	require.NoError(t, err)
	assert.Equal(t, user.OnboardingBudget, state.Step)
	assert.Equal(t, user.OnboardingBudget, users.user.Settings.Onboarding)

	// and going back is fine too
	state, err = service.SetStep(ctx, user.OnboardingCurrency)
	require.NoError(t, err)
	assert.Equal(t, user.OnboardingCurrency, state.Step)
}

func TestSetStep_unknownStep(t *testing.T) {
	// given
	service, _, _, _ := setup(user.User{Id: 1, Username: "test_user"})

	// when
	_, err := service.SetStep(ctx, "payments")

	// then
	assert.ErrorIs(t, err, ErrStepInvalid)
}

func TestSetStep_doneIsNotAStep(t *testing.T) {
	// given
	service, _, _, _ := setup(user.User{Id: 1, Username: "test_user"})

	// when
	_, err := service.SetStep(ctx, user.OnboardingDone)

	// then
	assert.ErrorIs(t, err, ErrStepInvalid)
}

func TestSetStep_afterCompletion(t *testing.T) {
	// given
	service, users, _, _ := setup(user.User{
		Id:       1,
		Username: "test_user",
		Settings: user.Settings{PrimaryCurrency: "USD", Onboarding: user.OnboardingDone},
	})

	// when
	state, err := service.SetStep(ctx, user.OnboardingWelcome)

	// then
	require.NoError(t, err)
	assert.Equal(t, user.OnboardingDone, state.Step)
	assert.True(t, state.Completed)
	assert.Equal(t, 0, users.updates)
}

func TestComplete(t *testing.T) {
	// given
	service, users, _, _ := setup(user.User{
		Id:       1,
		Username: "test_user",
		Settings: user.Settings{PrimaryCurrency: "USD", Onboarding: user.OnboardingBudget},
	})

	// when
	state, err := service.Complete(ctx)

	// then
	require.NoError(t, err)
	assert.Equal(t, user.OnboardingDone, state.Step)
	assert.True(t, state.Completed)
	assert.Equal(t, user.OnboardingDone, users.user.Settings.Onboarding)
}

func TestComplete_requiresPrimaryCurrency(t *testing.T) {
	// given
	service, _, _, _ := setup(user.User{Id: 1, Username: "test_user"})

	// when
	_, err := service.Complete(ctx)

	// then
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestComplete_idempotent(t *testing.T) {
	// given
	service, users, _, _ := setup(user.User{
		Id:       1,
		Username: "test_user",
		Settings: user.Settings{PrimaryCurrency: "USD", Onboarding: user.OnboardingDone},
	})

	// when
	state, err := service.Complete(ctx)

	// then
	require.NoError(t, err)
	assert.True(t, state.Completed)
	assert.Equal(t, 0, users.updates)
}
