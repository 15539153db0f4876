package budget

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/centavo/centavo/pkg/currency"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type BudgetDTO struct {
	Id         int    `json:"id"`
	CategoryId int    `json:"categoryId"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Period     string `json:"period"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
}

type ProgressDTO struct {
	Budget             BudgetDTO `json:"budget"`
	WindowStart        string    `json:"windowStart"`
	WindowEnd          string    `json:"windowEnd"`
	Spent              string    `json:"spent"`
	FormattedSpent     string    `json:"formattedSpent"`
	Remaining          string    `json:"remaining"`
	FormattedRemaining string    `json:"formattedRemaining"`
	OverBudget         bool      `json:"overBudget"`
}

const dateLayout = "2006-01-02"

type BudgetHandler struct {
	service BudgetService
}

func NewBudgetHandler(service BudgetService) *BudgetHandler {
	return &BudgetHandler{service}
}

func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new budget")
	w.Header().Set("Content-Type", "application/json")

	var budgetDTO BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&budgetDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	budget, err := dtoToBudget(budgetDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), budget)
	if errors.Is(err, ErrBudgetExists) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if errors.Is(err, ErrBudgetInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(budgetToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *BudgetHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	budgets, err := h.service.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	budgetsDTO := make([]BudgetDTO, 0, len(budgets))
	for _, budget := range budgets {
		budgetsDTO = append(budgetsDTO, budgetToDTO(budget))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(budgetsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	budgetId, err := strconv.Atoi(vars["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	budget, err := h.service.Get(r.Context(), budgetId)
	if errors.Is(err, ErrBudgetNotFound) {
		http.Error(w, "Budget not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(budgetToDTO(budget)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	budgetId, err := strconv.Atoi(vars["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var budgetDTO BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&budgetDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if budgetDTO.Id == 0 || budgetDTO.Id != budgetId {
		http.Error(w, "Invalid budget id in request body", http.StatusBadRequest)
		return
	}
	budget, err := dtoToBudget(budgetDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), budget)
	if errors.Is(err, ErrBudgetNotFound) {
		http.Error(w, "Budget not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrBudgetExists) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if errors.Is(err, ErrBudgetInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(budgetToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	budgetId, err := strconv.Atoi(vars["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.service.Delete(r.Context(), budgetId)
	if errors.Is(err, ErrBudgetNotFound) {
		http.Error(w, "Budget not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BudgetHandler) Progress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	progress, err := h.service.ProgressAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	progressDTO := make([]ProgressDTO, 0, len(progress))
	for _, p := range progress {
		progressDTO = append(progressDTO, progressToDTO(p))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(progressDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func budgetToDTO(budget Budget) BudgetDTO {
	dto := BudgetDTO{
		Id:         budget.Id,
		CategoryId: budget.CategoryId,
		Amount:     budget.Amount.String(),
		Currency:   budget.Currency,
		Period:     string(budget.Period),
	}
	if !budget.StartDate.IsZero() {
		dto.StartDate = budget.StartDate.Format(dateLayout)
	}
	if !budget.EndDate.IsZero() {
		dto.EndDate = budget.EndDate.Format(dateLayout)
	}
	return dto
}

func progressToDTO(p Progress) ProgressDTO {
	return ProgressDTO{
		Budget:             budgetToDTO(p.Budget),
		WindowStart:        p.WindowStart.Format(dateLayout),
		WindowEnd:          p.WindowEnd.Format(dateLayout),
		Spent:              p.Spent.String(),
		FormattedSpent:     currency.Format(p.Spent, p.Budget.Currency),
		Remaining:          p.Remaining.String(),
		FormattedRemaining: currency.Format(p.Remaining, p.Budget.Currency),
		OverBudget:         p.OverBudget,
	}
}

func dtoToBudget(dto BudgetDTO) (Budget, error) {
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return Budget{}, err
	}
	budget := Budget{
		Id:         dto.Id,
		CategoryId: dto.CategoryId,
		Amount:     amount,
		Currency:   dto.Currency,
		Period:     Period(dto.Period),
	}
	if dto.StartDate != "" {
		if budget.StartDate, err = time.Parse(dateLayout, dto.StartDate); err != nil {
			return Budget{}, err
		}
	}
	if dto.EndDate != "" {
		if budget.EndDate, err = time.Parse(dateLayout, dto.EndDate); err != nil {
			return Budget{}, err
		}
	}
	return budget, nil
}
