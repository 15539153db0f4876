package bill

import (
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

type BillDTO struct {
	Id              int    `json:"id"`
	Name            string `json:"name"`
	Amount          string `json:"amount"`
	FormattedAmount string `json:"formattedAmount,omitempty"`
	Currency        string `json:"currency"`
	CategoryId      int    `json:"categoryId,omitempty"`
	DueDate         string `json:"dueDate"`
	Recurrence      string `json:"recurrence"`
	AutoPay         bool   `json:"autoPay"`
	Status          string `json:"status"`
	LinkedAccountId int    `json:"linkedAccountId,omitempty"`
}

type PayRequestDTO struct {
	Amount          string `json:"amount,omitempty"`
	SourceAccountId int    `json:"sourceAccountId,omitempty"`
	Note            string `json:"note,omitempty"`
}

type InsightDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	BillIds []int  `json:"billIds"`
}

type BillHandler struct {
	service Service
}

func NewBillHandler(service Service) *BillHandler {
	return &BillHandler{service}
}

func (handler *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new bill")
	w.Header().Set("Content-Type", "application/json")

	var billDTO BillDTO
	if err := json.NewDecoder(r.Body).Decode(&billDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bill, err := dtoToBill(billDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := handler.service.Create(r.Context(), bill)
	if errors.Is(err, ErrBillInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(billToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BillHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	bills, err := handler.service.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	billsDTO := make([]BillDTO, 0, len(bills))
	for _, bill := range bills {
		billsDTO = append(billsDTO, billToDTO(bill))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(billsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Upcoming lists unpaid bills due within the requested number of days
// (default 14), overdue ones included.
func (handler *BillHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		var err error
		if days, err = strconv.Atoi(v); err != nil {
			http.Error(w, "Invalid days: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	bills, err := handler.service.Upcoming(r.Context(), days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	billsDTO := make([]BillDTO, 0, len(bills))
	for _, bill := range bills {
		billsDTO = append(billsDTO, billToDTO(bill))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(billsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BillHandler) Insights(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	insights, err := handler.service.Insights(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	insightsDTO := make([]InsightDTO, 0, len(insights))
	for _, insight := range insights {
		insightsDTO = append(insightsDTO, InsightDTO{
			Kind:    string(insight.Kind),
			Message: insight.Message,
			BillIds: insight.BillIds,
		})
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(insightsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	billId, err := strconv.Atoi(mux.Vars(r)["billId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bill, err := handler.service.Get(r.Context(), billId)
	if errors.Is(err, ErrBillNotFound) {
		http.Error(w, "Bill not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(billToDTO(bill)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	billId, err := strconv.Atoi(mux.Vars(r)["billId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var billDTO BillDTO
	if err := json.NewDecoder(r.Body).Decode(&billDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if billDTO.Id == 0 || billDTO.Id != billId {
		http.Error(w, "Invalid bill id in request body", http.StatusBadRequest)
		return
	}
	bill, err := dtoToBill(billDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := handler.service.Update(r.Context(), bill)
	if errors.Is(err, ErrBillNotFound) {
		http.Error(w, "Bill not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrBillInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(billToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	billId, err := strconv.Atoi(mux.Vars(r)["billId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = handler.service.Delete(r.Context(), billId)
	if errors.Is(err, ErrBillNotFound) {
		http.Error(w, "Bill not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Pay marks a bill paid. Recurring bills roll forward to their next due
// date instead of staying paid.
func (handler *BillHandler) Pay(w http.ResponseWriter, r *http.Request) {
	log.Debug("Recording bill payment")
	w.Header().Set("Content-Type", "application/json")
	billId, err := strconv.Atoi(mux.Vars(r)["billId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var requestDTO PayRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&requestDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	request, err := dtoToPayRequest(requestDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	paid, err := handler.service.Pay(r.Context(), billId, request)
	if errors.Is(err, ErrBillNotFound) {
		http.Error(w, "Bill not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrBillInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(billToDTO(paid)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func billToDTO(bill Bill) BillDTO {
	return BillDTO{
		Id:              bill.Id,
		Name:            bill.Name,
		Amount:          bill.Amount.String(),
		FormattedAmount: currency.Format(bill.Amount, bill.Currency),
		Currency:        bill.Currency,
		CategoryId:      bill.CategoryId,
		DueDate:         bill.DueDate.Format(dateLayout),
		Recurrence:      string(bill.Recurrence),
		AutoPay:         bill.AutoPay,
		Status:          string(bill.Status),
		LinkedAccountId: bill.LinkedAccountId,
	}
}

func dtoToBill(billDTO BillDTO) (Bill, error) {
	amount := decimal.Zero
	if billDTO.Amount != "" {
		var err error
		if amount, err = decimal.NewFromString(billDTO.Amount); err != nil {
			return Bill{}, fmt.Errorf("invalid amount: %w", err)
		}
	}
	var dueDate time.Time
	if billDTO.DueDate != "" {
		var err error
		if dueDate, err = time.Parse(dateLayout, billDTO.DueDate); err != nil {
			return Bill{}, fmt.Errorf("invalid due date: %w", err)
		}
	}
	return Bill{
		Id:              billDTO.Id,
		Name:            billDTO.Name,
		Amount:          amount,
		Currency:        billDTO.Currency,
		CategoryId:      billDTO.CategoryId,
		DueDate:         dueDate,
		Recurrence:      Recurrence(billDTO.Recurrence),
		AutoPay:         billDTO.AutoPay,
		Status:          Status(billDTO.Status),
		LinkedAccountId: billDTO.LinkedAccountId,
	}, nil
}

func dtoToPayRequest(requestDTO PayRequestDTO) (PayRequest, error) {
	amount := decimal.Zero
	if requestDTO.Amount != "" {
		var err error
		if amount, err = decimal.NewFromString(requestDTO.Amount); err != nil {
			return PayRequest{}, fmt.Errorf("invalid amount: %w", err)
		}
	}
	return PayRequest{
		Amount:          amount,
		SourceAccountId: requestDTO.SourceAccountId,
		Note:            requestDTO.Note,
	}, nil
}
