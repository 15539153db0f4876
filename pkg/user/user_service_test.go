package user

import (
	"context"
	"testing"
	"time"

	"github.com/centavo/centavo/internal/event_bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRepoStub = NewStubUserRepository()

func setup(t *testing.T) (*UserServiceImpl, *event_bus.EventBus, func()) {
	bus := event_bus.NewEventBus()
	service := NewUserService(userRepoStub, bus)
	return service, bus, func() {
		t.Log("Teardown after test")
		userRepoStub.Cleanup()
	}
}

func TestUserServiceImpl_CreateUser(t *testing.T) {
	t.Run("should apply defaults to a minimal user", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		created, err := service.CreateUser(context.Background(), User{
			Username:    "ann",
			DisplayName: "Ann",
		})

		// then
		require.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.NotEmpty(t, created.Uid)
		assert.Equal(t, "UTC", created.Settings.Timezone)
		assert.Equal(t, "USD", created.Settings.PrimaryCurrency)
		assert.Equal(t, OnboardingWelcome, created.Settings.Onboarding)
	})

	t.Run("should publish a user created event", func(t *testing.T) {
		service, bus, teardown := setup(t)
		defer teardown()

		var createdId int
		event_bus.SubscribeTyped[event_bus.UserCreated](bus, event_bus.UserCreatedEvent,
			func(e event_bus.EventT[event_bus.UserCreated]) error {
				createdId = e.Data.UserId
				return nil
			})

		// when
		created, err := service.CreateUser(context.Background(), User{Username: "bob", DisplayName: "Bob"})

		// then
		require.NoError(t, err)
		assert.Equal(t, created.Id, createdId)
	})

	t.Run("should reject an unknown primary currency", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.CreateUser(context.Background(), User{
			Username:    "cee",
			DisplayName: "Cee",
			Settings:    Settings{PrimaryCurrency: "ZZZ"},
		})

		// then
		assert.ErrorIs(t, err, ErrUserDataInvalid)
	})
}

func TestUserServiceImpl_UpdateUser(t *testing.T) {
	t.Run("should update settings of the current user", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()
		created, err := service.CreateUser(context.Background(), User{Username: "dee", DisplayName: "Dee"})
		require.NoError(t, err)
		ctx := WithUser(context.Background(), created)

		// when
		created.Settings.DisplayCurrency = "EUR"
		created.Settings.WeekFirstDay = time.Monday
		created.Settings.Onboarding = OnboardingDone
		updated, err := service.UpdateUser(ctx, created)

		// then
		require.NoError(t, err)
		assert.Equal(t, "EUR", updated.Settings.DisplayCurrency)
		assert.Equal(t, OnboardingDone, updated.Settings.Onboarding)
		assert.Equal(t, "EUR", updated.Settings.EffectiveDisplayCurrency())
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.UpdateUser(context.Background(), User{Username: "x", DisplayName: "X"})

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}
