package analytics

import (
	"bytes"
	"encoding/csv"

	"github.com/centavo/centavo/pkg/currency"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// CashflowRenderer turns a cashflow report into an export format.
type CashflowRenderer interface {
	RenderCashflow(report CashflowReport) (string, error)
}

type CsvCashflowRendererImpl struct {
}

func NewCsvCashflowRenderer() *CsvCashflowRendererImpl {
	return &CsvCashflowRendererImpl{}
}

func (t *CsvCashflowRendererImpl) RenderCashflow(report CashflowReport) (string, error) {
	digits := int32(currency.Lookup(report.Currency).DecimalDigits)

	data := make([][]string, 0, len(report.Months)+2)
	data = append(data, []string{"Month", "Income", "Expense", "Net"})

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	for _, month := range report.Months {
		data = append(data, []string{
			month.Month.Format("2006-01"),
			month.Income.StringFixed(digits),
			month.Expense.StringFixed(digits),
			month.Net.StringFixed(digits),
		})
		totalIncome = totalIncome.Add(month.Income)
		totalExpense = totalExpense.Add(month.Expense)
	}
	data = append(data, []string{
		"Total",
		totalIncome.StringFixed(digits),
		totalExpense.StringFixed(digits),
		totalIncome.Sub(totalExpense).StringFixed(digits),
	})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
