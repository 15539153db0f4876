package transaction

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/centavo/centavo/internal/event_bus"
	"github.com/centavo/centavo/pkg/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ImportResult summarizes a CSV import run. Errors holds one message per
// skipped row so the client can show what went wrong.
type ImportResult struct {
	BatchId  string
	Imported int
	Skipped  int
	Errors   []string
}

var importDateLayouts = []string{"2006-01-02", "01/02/2006", "2006/01/02"}

// ImportCSV reads a bank export and inserts every parseable row as a
// transaction on the given account. Expected header columns: date, amount,
// description; optional: merchant, notes, type, status. Without a type column
// the amount's sign decides the direction (negative = money out). Malformed
// rows are skipped and reported; the inserts themselves are all-or-nothing.
func (s *ServiceImpl) ImportCSV(ctx context.Context, accountId int, file io.Reader) (ImportResult, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to get current user: %w", err)
	}
	targetAccount, err := s.accounts.Get(ctx, accountId)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: account %d: %v", ErrTransactionInvalid, accountId, err)
	}

	reader := csv.NewReader(bufio.NewReader(file))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: missing header row: %v", ErrTransactionInvalid, err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "amount", "description"} {
		if _, ok := columns[required]; !ok {
			return ImportResult{}, fmt.Errorf("%w: missing %q column", ErrTransactionInvalid, required)
		}
	}

	result := ImportResult{BatchId: uuid.NewString()}
	transactions := make([]Transaction, 0)
	line := 1
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		transaction, err := rowToTransaction(record, columns)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		transaction.AccountId = accountId
		transaction.Currency = targetAccount.Currency
		transaction.ImportBatchId = result.BatchId
		transactions = append(transactions, transaction)
	}

	if len(transactions) == 0 {
		return result, nil
	}

	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		return repo.CreateMany(ctx, userId, transactions)
	})
	if err != nil {
		return ImportResult{}, err
	}
	result.Imported = len(transactions)
	log.Debugf("imported %d transactions into account %d (batch %s), %d rows skipped",
		result.Imported, accountId, result.BatchId, result.Skipped)

	// balances catch up through the usual events once the batch is committed
	for _, transaction := range transactions {
		event := event_bus.NewEvent(ctx, event_bus.TransactionCreatedEvent,
			event_bus.TransactionCreated{Transaction: changeOf(transaction)})
		if err := s.bus.Publish(event); err != nil {
			return result, fmt.Errorf("import committed but balance update failed: %w", err)
		}
	}
	return result, nil
}

func rowToTransaction(record []string, columns map[string]int) (Transaction, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := parseImportDate(field("date"))
	if err != nil {
		return Transaction{}, err
	}
	amount, err := parseImportAmount(field("amount"))
	if err != nil {
		return Transaction{}, fmt.Errorf("amount: %w", err)
	}
	description := field("description")
	if description == "" {
		return Transaction{}, errors.New("description is empty")
	}

	transaction := Transaction{
		Type:        TypeExpense,
		Status:      StatusCleared,
		Amount:      amount.Abs(),
		Date:        date,
		Description: description,
		Merchant:    field("merchant"),
		Notes:       field("notes"),
	}

	switch rowType := Type(strings.ToLower(field("type"))); rowType {
	case TypeIncome, TypeExpense:
		transaction.Type = rowType
	case "":
		// sign decides the direction: negative = money out
		if amount.IsZero() {
			return Transaction{}, errors.New("zero amount needs an explicit type")
		}
		if amount.IsPositive() {
			transaction.Type = TypeIncome
		}
	default:
		return Transaction{}, fmt.Errorf("unknown type %q", rowType)
	}

	if status := Status(strings.ToLower(field("status"))); status != "" {
		if !ValidStatus(status) {
			return Transaction{}, fmt.Errorf("unknown status %q", status)
		}
		transaction.Status = status
	}
	return transaction, nil
}

func parseImportDate(value string) (time.Time, error) {
	for _, layout := range importDateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			return date.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func parseImportAmount(value string) (decimal.Decimal, error) {
	value = strings.ReplaceAll(value, ",", "")
	value = strings.ReplaceAll(value, "$", "")
	return decimal.NewFromString(strings.TrimSpace(value))
}
