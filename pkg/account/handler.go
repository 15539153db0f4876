package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/centavo/centavo/pkg/currency"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type AccountDTO struct {
	Id               int    `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Currency         string `json:"currency"`
	Icon             string `json:"icon,omitempty"`
	Color            string `json:"color,omitempty"`
	Status           string `json:"status"`
	Balance          string `json:"balance"`
	FormattedBalance string `json:"formattedBalance"`
	Position         int    `json:"position"`
}

type BalanceSummaryDTO struct {
	Currency       string                `json:"currency"`
	Total          string                `json:"total"`
	FormattedTotal string                `json:"formattedTotal"`
	Accounts       []ConvertedBalanceDTO `json:"accounts"`
}

type ConvertedBalanceDTO struct {
	AccountId          int    `json:"accountId"`
	Name               string `json:"name"`
	Balance            string `json:"balance"`
	Currency           string `json:"currency"`
	Converted          string `json:"converted"`
	FormattedConverted string `json:"formattedConverted"`
}

type AccountHandler struct {
	service Service
}

func NewAccountHandler(service Service) *AccountHandler {
	return &AccountHandler{service}
}

func (handler *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new account")
	w.Header().Set("Content-Type", "application/json")

	var accountDTO AccountDTO
	if err := json.NewDecoder(r.Body).Decode(&accountDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	account := dtoToAccount(accountDTO)

	createdAccount, err := handler.service.Create(r.Context(), account)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(accountToDTO(createdAccount)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *AccountHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	includeArchived := r.URL.Query().Has("includeArchived")

	accounts, err := handler.service.GetAll(r.Context(), includeArchived)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	accountsDTO := make([]AccountDTO, 0, len(accounts))
	for _, account := range accounts {
		accountsDTO = append(accountsDTO, accountToDTO(account))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(accountsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *AccountHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	summary, err := handler.service.Summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summaryToDTO(summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	accountId, err := strconv.Atoi(vars["accountId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := handler.service.Get(r.Context(), accountId)
	if errors.Is(err, ErrAccountNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(accountToDTO(account)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	accountId, err := strconv.Atoi(vars["accountId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var accountDTO AccountDTO
	if err := json.NewDecoder(r.Body).Decode(&accountDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if accountDTO.Id == 0 || accountDTO.Id != accountId {
		http.Error(w, "Invalid account id in request body", http.StatusBadRequest)
		return
	}

	updatedAccount, err := handler.service.Update(r.Context(), dtoToAccount(accountDTO))
	if errors.Is(err, ErrAccountNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(accountToDTO(updatedAccount)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *AccountHandler) SetPosition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	accountId, err := strconv.Atoi(vars["accountId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var setPositionDTO struct {
		PrecedingId int `json:"precedingId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&setPositionDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = handler.service.MoveAfter(r.Context(), accountId, setPositionDTO.PrecedingId)
	if errors.Is(err, ErrAccountNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (handler *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	accountId, err := strconv.Atoi(vars["accountId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = handler.service.Delete(r.Context(), accountId)
	if errors.Is(err, ErrAccountNotFound) {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func accountToDTO(account Account) AccountDTO {
	return AccountDTO{
		Id:               account.Id,
		Name:             account.Name,
		Type:             string(account.Type),
		Currency:         account.Currency,
		Icon:             account.Icon,
		Color:            account.Color,
		Status:           string(account.Status),
		Balance:          account.Balance.String(),
		FormattedBalance: currency.Format(account.Balance, account.Currency),
		Position:         account.Position,
	}
}

func summaryToDTO(summary BalanceSummary) BalanceSummaryDTO {
	accounts := make([]ConvertedBalanceDTO, 0, len(summary.Accounts))
	for _, balance := range summary.Accounts {
		accounts = append(accounts, ConvertedBalanceDTO{
			AccountId:          balance.AccountId,
			Name:               balance.Name,
			Balance:            balance.Balance.String(),
			Currency:           balance.Currency,
			Converted:          balance.Converted.String(),
			FormattedConverted: currency.Format(balance.Converted, summary.Currency),
		})
	}
	return BalanceSummaryDTO{
		Currency:       summary.Currency,
		Total:          summary.Total.String(),
		FormattedTotal: currency.Format(summary.Total, summary.Currency),
		Accounts:       accounts,
	}
}

func dtoToAccount(accountDTO AccountDTO) Account {
	return Account{
		Id:       accountDTO.Id,
		Name:     accountDTO.Name,
		Type:     Type(accountDTO.Type),
		Currency: accountDTO.Currency,
		Icon:     accountDTO.Icon,
		Color:    accountDTO.Color,
		Status:   Status(accountDTO.Status),
		Position: accountDTO.Position,
	}
}
