package onboarding

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/centavo/centavo/pkg/user"
	log "github.com/sirupsen/logrus"
)

type StateDTO struct {
	Step           string `json:"step"`
	Completed      bool   `json:"completed"`
	CurrencyChosen bool   `json:"currencyChosen"`
	HasAccounts    bool   `json:"hasAccounts"`
	HasBudgets     bool   `json:"hasBudgets"`
}

type SetStepDTO struct {
	Step string `json:"step"`
}

type OnboardingHandler struct {
	service Service
}

func NewOnboardingHandler(service Service) *OnboardingHandler {
	return &OnboardingHandler{service}
}

func (h *OnboardingHandler) GetState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	state, err := h.service.State(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(stateToDTO(state)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *OnboardingHandler) SetStep(w http.ResponseWriter, r *http.Request) {
	log.Debug("Setting onboarding step")
	w.Header().Set("Content-Type", "application/json")

	var dto SetStepDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	state, err := h.service.SetStep(r.Context(), user.OnboardingStep(dto.Step))
	if err != nil {
		if errors.Is(err, ErrStepInvalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(stateToDTO(state)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	log.Debug("Completing onboarding")
	w.Header().Set("Content-Type", "application/json")

	state, err := h.service.Complete(r.Context())
	if err != nil {
		if errors.Is(err, ErrIncomplete) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(stateToDTO(state)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func stateToDTO(state State) StateDTO {
	return StateDTO{
		Step:           string(state.Step),
		Completed:      state.Completed,
		CurrencyChosen: state.CurrencyChosen,
		HasAccounts:    state.HasAccounts,
		HasBudgets:     state.HasBudgets,
	}
}
