package goal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/centavo/centavo/pkg/currency"
	"github.com/centavo/centavo/pkg/payment"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type GoalDTO struct {
	Id                     int    `json:"id"`
	Name                   string `json:"name"`
	TargetAmount           string `json:"targetAmount"`
	SavedAmount            string `json:"savedAmount"`
	FormattedTarget        string `json:"formattedTarget"`
	FormattedSaved         string `json:"formattedSaved"`
	Currency               string `json:"currency"`
	TargetDate             string `json:"targetDate,omitempty"`
	Icon                   string `json:"icon,omitempty"`
	Status                 string `json:"status"`
	MonthlyTarget          string `json:"monthlyTarget,omitempty"`
	FormattedMonthlyTarget string `json:"formattedMonthlyTarget,omitempty"`
}

type ContributionDTO struct {
	Amount          string `json:"amount"`
	Withdraw        bool   `json:"withdraw,omitempty"`
	SourceAccountId int    `json:"sourceAccountId,omitempty"`
	Note            string `json:"note,omitempty"`
}

const dateLayout = "2006-01-02"

type GoalHandler struct {
	service Service
}

func NewGoalHandler(service Service) *GoalHandler {
	return &GoalHandler{service}
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new goal")
	w.Header().Set("Content-Type", "application/json")

	var goalDTO GoalDTO
	if err := json.NewDecoder(r.Body).Decode(&goalDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	goal, err := dtoToGoal(goalDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), goal)
	if errors.Is(err, ErrGoalInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(h.goalToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *GoalHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	includeArchived := r.URL.Query().Has("includeArchived")

	goals, err := h.service.GetAll(r.Context(), includeArchived)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	goalsDTO := make([]GoalDTO, 0, len(goals))
	for _, goal := range goals {
		goalsDTO = append(goalsDTO, h.goalToDTO(goal))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(goalsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	goalId, err := strconv.Atoi(vars["goalId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	goal, err := h.service.Get(r.Context(), goalId)
	if errors.Is(err, ErrGoalNotFound) {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.goalToDTO(goal)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	goalId, err := strconv.Atoi(vars["goalId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var goalDTO GoalDTO
	if err := json.NewDecoder(r.Body).Decode(&goalDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if goalDTO.Id == 0 || goalDTO.Id != goalId {
		http.Error(w, "Invalid goal id in request body", http.StatusBadRequest)
		return
	}
	goal, err := dtoToGoal(goalDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), goal)
	if errors.Is(err, ErrGoalNotFound) {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrGoalInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.goalToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	goalId, err := strconv.Atoi(vars["goalId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.service.Delete(r.Context(), goalId)
	if errors.Is(err, ErrGoalNotFound) {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	goalId, err := strconv.Atoi(vars["goalId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var contributionDTO ContributionDTO
	if err := json.NewDecoder(r.Body).Decode(&contributionDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(contributionDTO.Amount)
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	goal, err := h.service.Contribute(r.Context(), goalId, Contribution{
		Amount:          amount,
		Withdraw:        contributionDTO.Withdraw,
		SourceAccountId: contributionDTO.SourceAccountId,
		Note:            contributionDTO.Note,
	})
	if errors.Is(err, ErrGoalNotFound) {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrGoalNotActive) || errors.Is(err, ErrGoalInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.goalToDTO(goal)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *GoalHandler) Contributions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	goalId, err := strconv.Atoi(vars["goalId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	contributions, err := h.service.Contributions(r.Context(), goalId)
	if errors.Is(err, ErrGoalNotFound) {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	contributionsDTO := make([]payment.PaymentDTO, 0, len(contributions))
	for _, contribution := range contributions {
		contributionsDTO = append(contributionsDTO, payment.PaymentToDTO(contribution))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(contributionsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *GoalHandler) goalToDTO(goal Goal) GoalDTO {
	dto := GoalDTO{
		Id:              goal.Id,
		Name:            goal.Name,
		TargetAmount:    goal.TargetAmount.String(),
		SavedAmount:     goal.SavedAmount.String(),
		FormattedTarget: currency.Format(goal.TargetAmount, goal.Currency),
		FormattedSaved:  currency.Format(goal.SavedAmount, goal.Currency),
		Currency:        goal.Currency,
		Icon:            goal.Icon,
		Status:          string(goal.Status),
	}
	if !goal.TargetDate.IsZero() {
		dto.TargetDate = goal.TargetDate.Format(dateLayout)
	}
	if monthly, ok := goal.MonthlyTarget(time.Now()); ok {
		dto.MonthlyTarget = monthly.String()
		dto.FormattedMonthlyTarget = currency.Format(monthly, goal.Currency)
	}
	return dto
}

func dtoToGoal(dto GoalDTO) (Goal, error) {
	targetAmount, err := decimal.NewFromString(dto.TargetAmount)
	if err != nil {
		return Goal{}, err
	}
	savedAmount := decimal.Zero
	if dto.SavedAmount != "" {
		if savedAmount, err = decimal.NewFromString(dto.SavedAmount); err != nil {
			return Goal{}, err
		}
	}
	goal := Goal{
		Id:           dto.Id,
		Name:         dto.Name,
		TargetAmount: targetAmount,
		SavedAmount:  savedAmount,
		Currency:     dto.Currency,
		Icon:         dto.Icon,
		Status:       Status(dto.Status),
	}
	if dto.TargetDate != "" {
		if goal.TargetDate, err = time.Parse(dateLayout, dto.TargetDate); err != nil {
			return Goal{}, err
		}
	}
	return goal, nil
}
