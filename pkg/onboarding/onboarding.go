package onboarding

import (
	"errors"

	"github.com/centavo/centavo/pkg/user"
)

var (
	// ErrStepInvalid is returned for steps outside the wizard sequence. That
	// covers the terminal step too: it is only reachable through Complete,
	// which checks the prerequisites.
	ErrStepInvalid = errors.New("unknown onboarding step")
	// ErrIncomplete is returned when Complete is called before the setup the
	// wizard exists for actually happened.
	ErrIncomplete = errors.New("onboarding prerequisites missing")
)

// State is the wizard's view of a user: the screen they parked on plus which
// steps the data already satisfies. The flags are derived, never stored, so
// deleting the last account reopens that step automatically.
type State struct {
	Step           user.OnboardingStep
	Completed      bool
	CurrencyChosen bool
	HasAccounts    bool
	HasBudgets     bool
}

// wizardSteps are the screens a user can park on. The terminal step is not,
// on purpose.
var wizardSteps = []user.OnboardingStep{
	user.OnboardingWelcome,
	user.OnboardingCurrency,
	user.OnboardingAccounts,
	user.OnboardingBudget,
}

func validStep(step user.OnboardingStep) bool {
	for _, s := range wizardSteps {
		if s == step {
			return true
		}
	}
	return false
}
