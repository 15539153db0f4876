package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/centavo/centavo/pkg/currency"
	"github.com/gorilla/mux"
)

type PaymentDTO struct {
	Id              int    `json:"id"`
	SourceType      string `json:"sourceType"`
	SourceId        int    `json:"sourceId"`
	Amount          string `json:"amount"`
	FormattedAmount string `json:"formattedAmount"`
	Currency        string `json:"currency"`
	PaidAt          string `json:"paidAt"`
	Note            string `json:"note,omitempty"`
}

type PaymentHandler struct {
	service Service
}

func NewPaymentHandler(service Service) *PaymentHandler {
	return &PaymentHandler{service}
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filter := Filter{SourceType: SourceType(r.URL.Query().Get("sourceType"))}
	if v := r.URL.Query().Get("sourceId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid sourceId", http.StatusBadRequest)
			return
		}
		filter.SourceId = id
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid offset", http.StatusBadRequest)
			return
		}
		filter.Offset = offset
	}

	payments, err := h.service.List(r.Context(), filter)
	if errors.Is(err, ErrPaymentInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	paymentsDTO := make([]PaymentDTO, 0, len(payments))
	for _, payment := range payments {
		paymentsDTO = append(paymentsDTO, PaymentToDTO(payment))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(paymentsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	paymentId, err := strconv.Atoi(vars["paymentId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.service.Delete(r.Context(), paymentId)
	if errors.Is(err, ErrPaymentNotFound) {
		http.Error(w, "Payment not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PaymentToDTO is shared with the bill, liability and goal handlers, which
// embed payment history in their own responses.
func PaymentToDTO(payment Payment) PaymentDTO {
	return PaymentDTO{
		Id:              payment.Id,
		SourceType:      string(payment.SourceType),
		SourceId:        payment.SourceId,
		Amount:          payment.Amount.String(),
		FormattedAmount: currency.Format(payment.Amount, payment.Currency),
		Currency:        payment.Currency,
		PaidAt:          payment.PaidAt.Format(time.RFC3339),
		Note:            payment.Note,
	}
}
