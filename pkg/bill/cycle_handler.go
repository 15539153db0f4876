package bill

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/centavo/centavo/pkg/account"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type BillCycleDTO struct {
	Id               int    `json:"id"`
	AccountId        int    `json:"accountId"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate,omitempty"`
	StatementBalance string `json:"statementBalance"`
	MinimumDue       string `json:"minimumDue"`
	DueDate          string `json:"dueDate,omitempty"`
	Status           string `json:"status"`
}

type OpenCycleDTO struct {
	StartDate string `json:"startDate,omitempty"`
}

type CloseCycleDTO struct {
	EndDate    string `json:"endDate,omitempty"`
	DueDate    string `json:"dueDate,omitempty"`
	MinimumDue string `json:"minimumDue,omitempty"`
}

type PayCycleDTO struct {
	Amount          string `json:"amount,omitempty"`
	SourceAccountId int    `json:"sourceAccountId,omitempty"`
	Note            string `json:"note,omitempty"`
}

type CycleHandler struct {
	service CycleService
}

func NewCycleHandler(service CycleService) *CycleHandler {
	return &CycleHandler{service}
}

func (handler *CycleHandler) Open(w http.ResponseWriter, r *http.Request) {
	log.Debug("Opening new billing cycle")
	w.Header().Set("Content-Type", "application/json")
	accountId, err := strconv.Atoi(mux.Vars(r)["accountId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var openDTO OpenCycleDTO
	if err := json.NewDecoder(r.Body).Decode(&openDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var startDate time.Time
	if openDTO.StartDate != "" {
		if startDate, err = time.Parse(dateLayout, openDTO.StartDate); err != nil {
			http.Error(w, "Invalid start date: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	cycle, err := handler.service.Open(r.Context(), accountId, startDate)
	if errors.Is(err, account.ErrAccountNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrCycleOpen) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if errors.Is(err, ErrCycleInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(cycleToDTO(cycle)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *CycleHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	accountId, err := strconv.Atoi(mux.Vars(r)["accountId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cycles, err := handler.service.ListByAccount(r.Context(), accountId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cyclesDTO := make([]BillCycleDTO, 0, len(cycles))
	for _, cycle := range cycles {
		cyclesDTO = append(cyclesDTO, cycleToDTO(cycle))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(cyclesDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *CycleHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	cycleId, err := strconv.Atoi(mux.Vars(r)["cycleId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cycle, err := handler.service.Get(r.Context(), cycleId)
	if errors.Is(err, ErrCycleNotFound) {
		http.Error(w, "Billing cycle not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(cycleToDTO(cycle)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Close ends an open cycle and computes its statement balance from the
// card's activity.
func (handler *CycleHandler) Close(w http.ResponseWriter, r *http.Request) {
	log.Debug("Closing billing cycle")
	w.Header().Set("Content-Type", "application/json")
	cycleId, err := strconv.Atoi(mux.Vars(r)["cycleId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var closeDTO CloseCycleDTO
	if err := json.NewDecoder(r.Body).Decode(&closeDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	request, err := dtoToCloseRequest(closeDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cycle, err := handler.service.Close(r.Context(), cycleId, request)
	if errors.Is(err, ErrCycleNotFound) {
		http.Error(w, "Billing cycle not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrCycleInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(cycleToDTO(cycle)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *CycleHandler) Pay(w http.ResponseWriter, r *http.Request) {
	log.Debug("Recording billing cycle payment")
	w.Header().Set("Content-Type", "application/json")
	cycleId, err := strconv.Atoi(mux.Vars(r)["cycleId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var payDTO PayCycleDTO
	if err := json.NewDecoder(r.Body).Decode(&payDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	request, err := dtoToPayCycleRequest(payDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cycle, err := handler.service.Pay(r.Context(), cycleId, request)
	if errors.Is(err, ErrCycleNotFound) {
		http.Error(w, "Billing cycle not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrCycleInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(cycleToDTO(cycle)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *CycleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	cycleId, err := strconv.Atoi(mux.Vars(r)["cycleId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = handler.service.Delete(r.Context(), cycleId)
	if errors.Is(err, ErrCycleNotFound) {
		http.Error(w, "Billing cycle not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func cycleToDTO(cycle BillCycle) BillCycleDTO {
	dto := BillCycleDTO{
		Id:               cycle.Id,
		AccountId:        cycle.AccountId,
		StartDate:        cycle.StartDate.Format(dateLayout),
		StatementBalance: cycle.StatementBalance.String(),
		MinimumDue:       cycle.MinimumDue.String(),
		Status:           string(cycle.Status),
	}
	if !cycle.EndDate.IsZero() {
		dto.EndDate = cycle.EndDate.Format(dateLayout)
	}
	if !cycle.DueDate.IsZero() {
		dto.DueDate = cycle.DueDate.Format(dateLayout)
	}
	return dto
}

func dtoToCloseRequest(closeDTO CloseCycleDTO) (CloseRequest, error) {
	var request CloseRequest
	var err error
	if closeDTO.EndDate != "" {
		if request.EndDate, err = time.Parse(dateLayout, closeDTO.EndDate); err != nil {
			return CloseRequest{}, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if closeDTO.DueDate != "" {
		if request.DueDate, err = time.Parse(dateLayout, closeDTO.DueDate); err != nil {
			return CloseRequest{}, fmt.Errorf("invalid due date: %w", err)
		}
	}
	request.MinimumDue = decimal.Zero
	if closeDTO.MinimumDue != "" {
		if request.MinimumDue, err = decimal.NewFromString(closeDTO.MinimumDue); err != nil {
			return CloseRequest{}, fmt.Errorf("invalid minimum due: %w", err)
		}
	}
	return request, nil
}

func dtoToPayCycleRequest(payDTO PayCycleDTO) (PayCycleRequest, error) {
	amount := decimal.Zero
	if payDTO.Amount != "" {
		var err error
		if amount, err = decimal.NewFromString(payDTO.Amount); err != nil {
			return PayCycleRequest{}, fmt.Errorf("invalid amount: %w", err)
		}
	}
	return PayCycleRequest{
		Amount:          amount,
		SourceAccountId: payDTO.SourceAccountId,
		Note:            payDTO.Note,
	}, nil
}
