package transaction

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

type TransactionDTO struct {
	Id                int        `json:"id"`
	AccountId         int        `json:"accountId"`
	TransferAccountId int        `json:"transferAccountId,omitempty"`
	CategoryId        int        `json:"categoryId,omitempty"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	Amount            string     `json:"amount"`
	FormattedAmount   string     `json:"formattedAmount,omitempty"`
	Currency          string     `json:"currency"`
	Date              string     `json:"date"`
	Description       string     `json:"description"`
	Merchant          string     `json:"merchant,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	RecurringId       int        `json:"recurringId,omitempty"`
	ImportBatchId     string     `json:"importBatchId,omitempty"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
}

type ImportResultDTO struct {
	BatchId  string   `json:"batchId"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

const dateLayout = "2006-01-02"

type TransactionHandler struct {
	service Service
}

func NewTransactionHandler(service Service) *TransactionHandler {
	return &TransactionHandler{service}
}

func (handler *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new transaction")
	w.Header().Set("Content-Type", "application/json")

	var transactionDTO TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&transactionDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	transaction, err := dtoToTransaction(transactionDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := handler.service.Create(r.Context(), transaction)
	if errors.Is(err, ErrTransactionInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(transactionToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactions, err := handler.service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	transactionsDTO := make([]TransactionDTO, 0, len(transactions))
	for _, transaction := range transactions {
		transactionsDTO = append(transactionsDTO, transactionToDTO(transaction))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(transactionsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	transactionId, err := strconv.Atoi(mux.Vars(r)["transactionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transaction, err := handler.service.Get(r.Context(), transactionId)
	if errors.Is(err, ErrTransactionNotFound) {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(transactionToDTO(transaction)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	transactionId, err := strconv.Atoi(mux.Vars(r)["transactionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var transactionDTO TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&transactionDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if transactionDTO.Id == 0 || transactionDTO.Id != transactionId {
		http.Error(w, "Invalid transaction id in request body", http.StatusBadRequest)
		return
	}
	transaction, err := dtoToTransaction(transactionDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := handler.service.Update(r.Context(), transaction)
	if errors.Is(err, ErrTransactionNotFound) {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrTransactionInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(transactionToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	transactionId, err := strconv.Atoi(mux.Vars(r)["transactionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = handler.service.Delete(r.Context(), transactionId)
	if errors.Is(err, ErrTransactionNotFound) {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Import accepts a multipart form with a "file" part (the CSV) and an
// "accountId" field naming the target account.
func (handler *TransactionHandler) Import(w http.ResponseWriter, r *http.Request) {
	log.Debug("Importing transactions from CSV")
	w.Header().Set("Content-Type", "application/json")

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10 MB
		http.Error(w, "Unable to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	accountId, err := strconv.Atoi(r.FormValue("accountId"))
	if err != nil {
		http.Error(w, "Invalid accountId: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Unable to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := handler.service.ImportCSV(r.Context(), accountId, file)
	if errors.Is(err, ErrTransactionInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ImportResultDTO(result)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func filterFromQuery(r *http.Request) (Filter, error) {
	query := r.URL.Query()
	filter := Filter{
		Type:   Type(query.Get("type")),
		Status: Status(query.Get("status")),
		Search: query.Get("search"),
	}
	var err error
	if v := query.Get("accountId"); v != "" {
		if filter.AccountId, err = strconv.Atoi(v); err != nil {
			return Filter{}, fmt.Errorf("invalid accountId: %w", err)
		}
	}
	if v := query.Get("categoryId"); v != "" {
		if filter.CategoryId, err = strconv.Atoi(v); err != nil {
			return Filter{}, fmt.Errorf("invalid categoryId: %w", err)
		}
	}
	if v := query.Get("from"); v != "" {
		if filter.From, err = time.Parse(dateLayout, v); err != nil {
			return Filter{}, fmt.Errorf("invalid from date: %w", err)
		}
	}
	if v := query.Get("to"); v != "" {
		if filter.To, err = time.Parse(dateLayout, v); err != nil {
			return Filter{}, fmt.Errorf("invalid to date: %w", err)
		}
	}
	if v := query.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil {
			return Filter{}, fmt.Errorf("invalid limit: %w", err)
		}
	}
	if v := query.Get("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil {
			return Filter{}, fmt.Errorf("invalid offset: %w", err)
		}
	}
	return filter, nil
}

func transactionToDTO(transaction Transaction) TransactionDTO {
	var createdAt *time.Time
	if !transaction.CreatedAt.IsZero() {
		createdAt = &transaction.CreatedAt
	}
	return TransactionDTO{
		Id:                transaction.Id,
		AccountId:         transaction.AccountId,
		TransferAccountId: transaction.TransferAccountId,
		CategoryId:        transaction.CategoryId,
		Type:              string(transaction.Type),
		Status:            string(transaction.Status),
		Amount:            transaction.Amount.String(),
		FormattedAmount:   currency.Format(transaction.Amount, transaction.Currency),
		Currency:          transaction.Currency,
		Date:              transaction.Date.Format(dateLayout),
		Description:       transaction.Description,
		Merchant:          transaction.Merchant,
		Notes:             transaction.Notes,
		RecurringId:       transaction.RecurringId,
		ImportBatchId:     transaction.ImportBatchId,
		CreatedAt:         createdAt,
	}
}

func dtoToTransaction(transactionDTO TransactionDTO) (Transaction, error) {
	amount := decimal.Zero
	if transactionDTO.Amount != "" {
		var err error
		if amount, err = decimal.NewFromString(transactionDTO.Amount); err != nil {
			return Transaction{}, fmt.Errorf("invalid amount: %w", err)
		}
	}
	var date time.Time
	if transactionDTO.Date != "" {
		var err error
		if date, err = time.Parse(dateLayout, transactionDTO.Date); err != nil {
			return Transaction{}, fmt.Errorf("invalid date: %w", err)
		}
	}
	return Transaction{
		Id:                transactionDTO.Id,
		AccountId:         transactionDTO.AccountId,
		TransferAccountId: transactionDTO.TransferAccountId,
		CategoryId:        transactionDTO.CategoryId,
		Type:              Type(transactionDTO.Type),
		Status:            Status(transactionDTO.Status),
		Amount:            amount,
		Currency:          transactionDTO.Currency,
		Date:              date,
		Description:       transactionDTO.Description,
		Merchant:          transactionDTO.Merchant,
		Notes:             transactionDTO.Notes,
	}, nil
}
