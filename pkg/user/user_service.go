package user

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/centavo/centavo/internal/event_bus"
	"github.com/centavo/centavo/pkg/currency"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const storagePath = "storage/user_photos/"

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	DeleteUser(ctx context.Context, id int) error
	GetAllUsers(ctx context.Context) ([]User, error)
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
	StoreUserPhoto(ctx context.Context, photo []byte) error
	GetUserPhoto(ctx context.Context, id int) ([]byte, error)
	GetCurrentUserPhoto(ctx context.Context) ([]byte, error)
	DeleteUserPhoto(ctx context.Context) error
}

type Provider interface {
	GetCurrentUser(ctx context.Context) (User, error)
}

type UserServiceImpl struct {
	repo Repo
	bus  *event_bus.EventBus
}

func NewUserService(repo Repo, bus *event_bus.EventBus) *UserServiceImpl {
	return &UserServiceImpl{repo: repo, bus: bus}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.GetUser(ctx, userId)
}

func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	user = applyDefaults(user)
	if err := validateSettings(user.Settings); err != nil {
		return User{}, err
	}

	userId, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId

	if err := u.bus.Publish(event_bus.NewEvent(ctx, event_bus.UserCreatedEvent, event_bus.UserCreated{UserId: userId})); err != nil {
		log.Warnf("user created event handling failed: %v", err)
	}
	return user, nil
}

func (u *UserServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.repo.GetUser(ctx, id)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

func (u *UserServiceImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateSettings(user.Settings); err != nil {
		return User{}, err
	}
	return u.repo.UpdateUser(ctx, userId, user)
}

func (u *UserServiceImpl) DeleteUser(ctx context.Context, id int) error {
	return u.repo.DeleteUser(ctx, id)
}

func (u *UserServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	return u.repo.GetAllUsers(ctx)
}

func (u *UserServiceImpl) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	return u.repo.IsUsernameAvailable(ctx, username)
}

func (u *UserServiceImpl) StoreUserPhoto(ctx context.Context, photo []byte) error {
	userId, err := CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	err = os.MkdirAll(storagePath, 0755)
	if err != nil {
		return err
	}
	err = os.WriteFile(storagePath+"/"+strconv.Itoa(userId)+".jpg", photo, 0644)
	if err != nil {
		return err
	}
	return nil
}

func (u *UserServiceImpl) GetUserPhoto(_ context.Context, id int) ([]byte, error) {
	expectedFile := storagePath + "/" + strconv.Itoa(id) + ".jpg"
	if _, err := os.Stat(expectedFile); os.IsNotExist(err) {
		return nil, nil
	}
	return os.ReadFile(expectedFile)
}

func (u *UserServiceImpl) GetCurrentUserPhoto(ctx context.Context) ([]byte, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	return u.GetUserPhoto(ctx, userId)
}

func (u *UserServiceImpl) DeleteUserPhoto(ctx context.Context) error {
	userId, err := CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	expectedFile := storagePath + "/" + strconv.Itoa(userId) + ".jpg"
	if _, err := os.Stat(expectedFile); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(expectedFile)
}

// applyDefaults fills the fields a minimal signup payload leaves empty.
func applyDefaults(user User) User {
	if user.Uid == "" {
		user.Uid = uuid.NewString()
	}
	if user.Settings.Timezone == "" {
		user.Settings.Timezone = "UTC"
	}
	if user.Settings.Locale == "" {
		user.Settings.Locale = "en-US"
	}
	if user.Settings.PrimaryCurrency == "" {
		user.Settings.PrimaryCurrency = currency.DefaultCode
	}
	if user.Settings.Onboarding == "" {
		user.Settings.Onboarding = OnboardingWelcome
	}
	return user
}

func validateSettings(settings Settings) error {
	if !currency.IsKnown(settings.PrimaryCurrency) {
		return fmt.Errorf("%w: unknown primary currency %q", ErrUserDataInvalid, settings.PrimaryCurrency)
	}
	if settings.DisplayCurrency != "" && !currency.IsKnown(settings.DisplayCurrency) {
		return fmt.Errorf("%w: unknown display currency %q", ErrUserDataInvalid, settings.DisplayCurrency)
	}
	switch settings.Onboarding {
	case OnboardingWelcome, OnboardingCurrency, OnboardingAccounts, OnboardingBudget, OnboardingDone:
	default:
		return fmt.Errorf("%w: unknown onboarding step %q", ErrUserDataInvalid, settings.Onboarding)
	}
	return nil
}
