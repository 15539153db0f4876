package recurring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/centavo/centavo/pkg/currency"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type RecurringDTO struct {
	Id              int    `json:"id"`
	Description     string `json:"description"`
	Merchant        string `json:"merchant,omitempty"`
	Amount          string `json:"amount"`
	FormattedAmount string `json:"formattedAmount,omitempty"`
	Currency        string `json:"currency"`
	AccountId       int    `json:"accountId"`
	CategoryId      int    `json:"categoryId,omitempty"`
	Kind            string `json:"kind"`
	Frequency       string `json:"frequency"`
	NextDate        string `json:"nextDate"`
	Active          bool   `json:"active"`
}

type CandidateDTO struct {
	Description     string  `json:"description"`
	Merchant        string  `json:"merchant,omitempty"`
	Amount          string  `json:"amount"`
	FormattedAmount string  `json:"formattedAmount,omitempty"`
	Currency        string  `json:"currency"`
	AccountId       int     `json:"accountId"`
	CategoryId      int     `json:"categoryId,omitempty"`
	Kind            string  `json:"kind"`
	Frequency       string  `json:"frequency"`
	NextDate        string  `json:"nextDate"`
	Occurrences     int     `json:"occurrences"`
	Confidence      float64 `json:"confidence"`
}

type GenerateResultDTO struct {
	Created        int   `json:"created"`
	TransactionIds []int `json:"transactionIds"`
}

type RecurringHandler struct {
	service Service
}

func NewRecurringHandler(service Service) *RecurringHandler {
	return &RecurringHandler{service}
}

func (handler *RecurringHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new recurring transaction")
	w.Header().Set("Content-Type", "application/json")

	var recurringDTO RecurringDTO
	if err := json.NewDecoder(r.Body).Decode(&recurringDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	recurring, err := dtoToRecurring(recurringDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := handler.service.Create(r.Context(), recurring)
	if errors.Is(err, ErrRecurringInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(recurringToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *RecurringHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	recurrings, err := handler.service.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	recurringsDTO := make([]RecurringDTO, 0, len(recurrings))
	for _, recurring := range recurrings {
		recurringsDTO = append(recurringsDTO, recurringToDTO(recurring))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(recurringsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *RecurringHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	recurringId, err := strconv.Atoi(mux.Vars(r)["recurringId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	recurring, err := handler.service.Get(r.Context(), recurringId)
	if errors.Is(err, ErrRecurringNotFound) {
		http.Error(w, "Recurring transaction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(recurringToDTO(recurring)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *RecurringHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	recurringId, err := strconv.Atoi(mux.Vars(r)["recurringId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var recurringDTO RecurringDTO
	if err := json.NewDecoder(r.Body).Decode(&recurringDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if recurringDTO.Id == 0 || recurringDTO.Id != recurringId {
		http.Error(w, "Invalid recurring transaction id in request body", http.StatusBadRequest)
		return
	}
	recurring, err := dtoToRecurring(recurringDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := handler.service.Update(r.Context(), recurring)
	if errors.Is(err, ErrRecurringNotFound) {
		http.Error(w, "Recurring transaction not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrRecurringInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(recurringToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *RecurringHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	recurringId, err := strconv.Atoi(mux.Vars(r)["recurringId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = handler.service.Delete(r.Context(), recurringId)
	if errors.Is(err, ErrRecurringNotFound) {
		http.Error(w, "Recurring transaction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *RecurringHandler) Pause(w http.ResponseWriter, r *http.Request) {
	handler.setActive(w, r, handler.service.Pause)
}

func (handler *RecurringHandler) Resume(w http.ResponseWriter, r *http.Request) {
	handler.setActive(w, r, handler.service.Resume)
}

func (handler *RecurringHandler) setActive(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int) error) {
	w.Header().Set("Content-Type", "application/json")
	recurringId, err := strconv.Atoi(mux.Vars(r)["recurringId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = action(r.Context(), recurringId)
	if errors.Is(err, ErrRecurringNotFound) {
		http.Error(w, "Recurring transaction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Generate materializes every due occurrence across active templates.
func (handler *RecurringHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log.Debug("Generating due recurring transactions")
	w.Header().Set("Content-Type", "application/json")

	created, err := handler.service.GenerateDue(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ids := make([]int, 0, len(created))
	for _, t := range created {
		ids = append(ids, t.Id)
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(GenerateResultDTO{Created: len(created), TransactionIds: ids}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *RecurringHandler) Detect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	candidates, err := handler.service.Detect(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	candidatesDTO := make([]CandidateDTO, 0, len(candidates))
	for _, candidate := range candidates {
		candidatesDTO = append(candidatesDTO, candidateToDTO(candidate))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(candidatesDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func recurringToDTO(recurring RecurringTransaction) RecurringDTO {
	return RecurringDTO{
		Id:              recurring.Id,
		Description:     recurring.Description,
		Merchant:        recurring.Merchant,
		Amount:          recurring.Amount.String(),
		FormattedAmount: currency.Format(recurring.Amount, recurring.Currency),
		Currency:        recurring.Currency,
		AccountId:       recurring.AccountId,
		CategoryId:      recurring.CategoryId,
		Kind:            string(recurring.Kind),
		Frequency:       string(recurring.Frequency),
		NextDate:        recurring.NextDate.Format(dateLayout),
		Active:          recurring.Active,
	}
}

func candidateToDTO(candidate Candidate) CandidateDTO {
	return CandidateDTO{
		Description:     candidate.Description,
		Merchant:        candidate.Merchant,
		Amount:          candidate.Amount.String(),
		FormattedAmount: currency.Format(candidate.Amount, candidate.Currency),
		Currency:        candidate.Currency,
		AccountId:       candidate.AccountId,
		CategoryId:      candidate.CategoryId,
		Kind:            string(candidate.Kind),
		Frequency:       string(candidate.Frequency),
		NextDate:        candidate.NextDate.Format(dateLayout),
		Occurrences:     candidate.Occurrences,
		Confidence:      candidate.Confidence,
	}
}

func dtoToRecurring(recurringDTO RecurringDTO) (RecurringTransaction, error) {
	amount := decimal.Zero
	if recurringDTO.Amount != "" {
		var err error
		if amount, err = decimal.NewFromString(recurringDTO.Amount); err != nil {
			return RecurringTransaction{}, fmt.Errorf("invalid amount: %w", err)
		}
	}
	var nextDate time.Time
	if recurringDTO.NextDate != "" {
		var err error
		if nextDate, err = time.Parse(dateLayout, recurringDTO.NextDate); err != nil {
			return RecurringTransaction{}, fmt.Errorf("invalid next date: %w", err)
		}
	}
	return RecurringTransaction{
		Id:          recurringDTO.Id,
		Description: recurringDTO.Description,
		Merchant:    recurringDTO.Merchant,
		Amount:      amount,
		Currency:    recurringDTO.Currency,
		AccountId:   recurringDTO.AccountId,
		CategoryId:  recurringDTO.CategoryId,
		Kind:        Kind(recurringDTO.Kind),
		Frequency:   Frequency(recurringDTO.Frequency),
		NextDate:    nextDate,
		Active:      recurringDTO.Active,
	}, nil
}
