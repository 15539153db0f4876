package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCsvCashflowRendererImpl_RenderCashflow(t1 *testing.T) {
	month := func(m time.Month) time.Time {
		return time.Date(2025, m, 1, 0, 0, 0, 0, time.UTC)
	}
	tests := []struct {
		name   string
		report CashflowReport
		want   string
	}{
		{
			name: "RenderCashflow with valid data",
			report: CashflowReport{
				Currency: "USD",
				Months: []CashflowPoint{
					{
						Month:   month(time.April),
						Income:  decimal.NewFromInt(1000),
						Expense: decimal.NewFromInt(400),
						Net:     decimal.NewFromInt(600),
					},
					{
						Month:   month(time.May),
						Income:  decimal.Zero,
						Expense: decimal.Zero,
						Net:     decimal.Zero,
					},
					{
						Month:   month(time.June),
						Income:  decimal.NewFromInt(2000),
						Expense: decimal.NewFromInt(625),
						Net:     decimal.NewFromInt(1375),
					},
				},
			},
			want: "Month,Income,Expense,Net\n" +
				"2025-04,1000.00,400.00,600.00\n" +
				"2025-05,0.00,0.00,0.00\n" +
				"2025-06,2000.00,625.00,1375.00\n" +
				"Total,3000.00,1025.00,1975.00\n",
		},
		{
			name: "RenderCashflow honors zero-decimal currencies",
			report: CashflowReport{
				Currency: "JPY",
				Months: []CashflowPoint{
					{
						Month:   month(time.June),
						Income:  decimal.NewFromInt(250000),
						Expense: decimal.NewFromInt(180000),
						Net:     decimal.NewFromInt(70000),
					},
				},
			},
			want: "Month,Income,Expense,Net\n" +
				"2025-06,250000,180000,70000\n" +
				"Total,250000,180000,70000\n",
		},
	}
	for _, tt := range tests {
		t1.Run(tt.name, func(t1 *testing.T) {
			t := &CsvCashflowRendererImpl{}
			if got, _ := t.RenderCashflow(tt.report); got != tt.want {
				t1.Errorf("RenderCashflow() = %v, want %v", got, tt.want)
			}
		})
	}
}
