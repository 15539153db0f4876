package user

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserDataInvalid = errors.New("user data is invalid")
)

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	PhotoUrl    string
	Settings    Settings
}

// OnboardingStep tracks how far a user got through first-run setup. The steps
// form a fixed sequence; Done is terminal.
type OnboardingStep string

const (
	OnboardingWelcome  OnboardingStep = "welcome"
	OnboardingCurrency OnboardingStep = "currency"
	OnboardingAccounts OnboardingStep = "accounts"
	OnboardingBudget   OnboardingStep = "budget"
	OnboardingDone     OnboardingStep = "done"
)

type Settings struct {
	Timezone string
	Locale   string
	// WeekFirstDay anchors budget windows and the calendar grid.
	WeekFirstDay time.Weekday
	// PrimaryCurrency is the default currency for new accounts.
	PrimaryCurrency string
	// DisplayCurrency is what dashboards convert into. Empty means primary.
	DisplayCurrency string
	// HideBalances masks amounts in the UI until explicitly revealed.
	HideBalances bool
	Onboarding   OnboardingStep
}

// EffectiveDisplayCurrency returns the currency dashboards should render in.
func (s Settings) EffectiveDisplayCurrency() string {
	if s.DisplayCurrency != "" {
		return s.DisplayCurrency
	}
	return s.PrimaryCurrency
}
