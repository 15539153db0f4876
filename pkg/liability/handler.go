package liability

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

type LiabilityDTO struct {
	Id               int    `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Principal        string `json:"principal"`
	Balance          string `json:"balance"`
	FormattedBalance string `json:"formattedBalance"`
	Currency         string `json:"currency"`
	InterestRate     string `json:"interestRate"`
	MinimumPayment   string `json:"minimumPayment"`
	DueDay           int    `json:"dueDay,omitempty"`
	NextDueDate      string `json:"nextDueDate,omitempty"`
	Status           string `json:"status"`
}

type LiabilityPaymentDTO struct {
	Amount          string `json:"amount"`
	SourceAccountId int    `json:"sourceAccountId,omitempty"`
	Note            string `json:"note,omitempty"`
}

type PayoffDTO struct {
	Months                 int    `json:"months"`
	TotalInterest          string `json:"totalInterest"`
	FormattedTotalInterest string `json:"formattedTotalInterest"`
	TotalPaid              string `json:"totalPaid"`
	FormattedTotalPaid     string `json:"formattedTotalPaid"`
}

const dateLayout = "2006-01-02"

type LiabilityHandler struct {
	service Service
}

func NewLiabilityHandler(service Service) *LiabilityHandler {
	return &LiabilityHandler{service}
}

func (h *LiabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new liability")
	w.Header().Set("Content-Type", "application/json")

	var liabilityDTO LiabilityDTO
	if err := json.NewDecoder(r.Body).Decode(&liabilityDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	liability, err := dtoToLiability(liabilityDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), liability)
	if errors.Is(err, ErrLiabilityInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(liabilityToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *LiabilityHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	includeArchived := r.URL.Query().Has("includeArchived")

	liabilities, err := h.service.GetAll(r.Context(), includeArchived)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	liabilitiesDTO := make([]LiabilityDTO, 0, len(liabilities))
	for _, liability := range liabilities {
		liabilitiesDTO = append(liabilitiesDTO, liabilityToDTO(liability))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(liabilitiesDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *LiabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	liabilityId, err := strconv.Atoi(vars["liabilityId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	liability, err := h.service.Get(r.Context(), liabilityId)
	if errors.Is(err, ErrLiabilityNotFound) {
		http.Error(w, "Liability not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(liabilityToDTO(liability)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *LiabilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	liabilityId, err := strconv.Atoi(vars["liabilityId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var liabilityDTO LiabilityDTO
	if err := json.NewDecoder(r.Body).Decode(&liabilityDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if liabilityDTO.Id == 0 || liabilityDTO.Id != liabilityId {
		http.Error(w, "Invalid liability id in request body", http.StatusBadRequest)
		return
	}
	liability, err := dtoToLiability(liabilityDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), liability)
	if errors.Is(err, ErrLiabilityNotFound) {
		http.Error(w, "Liability not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrLiabilityInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(liabilityToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *LiabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	liabilityId, err := strconv.Atoi(vars["liabilityId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.service.Delete(r.Context(), liabilityId)
	if errors.Is(err, ErrLiabilityNotFound) {
		http.Error(w, "Liability not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LiabilityHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	liabilityId, err := strconv.Atoi(vars["liabilityId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var paymentDTO LiabilityPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&paymentDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(paymentDTO.Amount)
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	liability, err := h.service.RecordPayment(r.Context(), liabilityId, PaymentRequest{
		Amount:          amount,
		SourceAccountId: paymentDTO.SourceAccountId,
		Note:            paymentDTO.Note,
	})
	if errors.Is(err, ErrLiabilityNotFound) {
		http.Error(w, "Liability not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrLiabilityInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(liabilityToDTO(liability)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *LiabilityHandler) Payments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	liabilityId, err := strconv.Atoi(vars["liabilityId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payments, err := h.service.Payments(r.Context(), liabilityId)
	if errors.Is(err, ErrLiabilityNotFound) {
		http.Error(w, "Liability not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	paymentsDTO := make([]payment.PaymentDTO, 0, len(payments))
	for _, p := range payments {
		paymentsDTO = append(paymentsDTO, payment.PaymentToDTO(p))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(paymentsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *LiabilityHandler) Payoff(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	liabilityId, err := strconv.Atoi(vars["liabilityId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	monthlyPayment := decimal.Zero
	if v := r.URL.Query().Get("payment"); v != "" {
		if monthlyPayment, err = decimal.NewFromString(v); err != nil {
			http.Error(w, "Invalid payment", http.StatusBadRequest)
			return
		}
	}

	liability, err := h.service.Get(r.Context(), liabilityId)
	if errors.Is(err, ErrLiabilityNotFound) {
		http.Error(w, "Liability not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	payoff, err := h.service.Payoff(r.Context(), liabilityId, monthlyPayment)
	if errors.Is(err, ErrNeverAmortizes) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if errors.Is(err, ErrLiabilityInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(PayoffDTO{
		Months:                 payoff.Months,
		TotalInterest:          payoff.TotalInterest.String(),
		FormattedTotalInterest: currency.Format(payoff.TotalInterest, liability.Currency),
		TotalPaid:              payoff.TotalPaid.String(),
		FormattedTotalPaid:     currency.Format(payoff.TotalPaid, liability.Currency),
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func liabilityToDTO(liability Liability) LiabilityDTO {
	dto := LiabilityDTO{
		Id:               liability.Id,
		Name:             liability.Name,
		Type:             string(liability.Type),
		Principal:        liability.Principal.String(),
		Balance:          liability.Balance.String(),
		FormattedBalance: currency.Format(liability.Balance, liability.Currency),
		Currency:         liability.Currency,
		InterestRate:     liability.InterestRate.String(),
		MinimumPayment:   liability.MinimumPayment.String(),
		DueDay:           liability.DueDay,
		Status:           string(liability.Status),
	}
	if nextDue := liability.NextDueDate(time.Now()); !nextDue.IsZero() {
		dto.NextDueDate = nextDue.Format(dateLayout)
	}
	return dto
}

func dtoToLiability(dto LiabilityDTO) (Liability, error) {
	liability := Liability{
		Id:     dto.Id,
		Name:   dto.Name,
		Type:   Type(dto.Type),
		DueDay: dto.DueDay,
		Status: Status(dto.Status),
	}
	var err error
	if dto.Principal != "" {
		if liability.Principal, err = decimal.NewFromString(dto.Principal); err != nil {
			return Liability{}, err
		}
	}
	if dto.Balance != "" {
		if liability.Balance, err = decimal.NewFromString(dto.Balance); err != nil {
			return Liability{}, err
		}
	}
	if dto.InterestRate != "" {
		if liability.InterestRate, err = decimal.NewFromString(dto.InterestRate); err != nil {
			return Liability{}, err
		}
	}
	if dto.MinimumPayment != "" {
		if liability.MinimumPayment, err = decimal.NewFromString(dto.MinimumPayment); err != nil {
			return Liability{}, err
		}
	}
	liability.Currency = dto.Currency
	return liability, nil
}
