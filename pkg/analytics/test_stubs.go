package analytics

import (
	"context"

	"github.com/centavo/centavo/pkg/account"
	"github.com/centavo/centavo/pkg/bill"
	"github.com/centavo/centavo/pkg/category"
	"github.com/centavo/centavo/pkg/goal"
	"github.com/centavo/centavo/pkg/liability"
	"github.com/centavo/centavo/pkg/payment"
	"github.com/centavo/centavo/pkg/transaction"
	"github.com/shopspring/decimal"
)

type accountReaderStub struct {
	accounts []account.Account
}

func newAccountReaderStub() *accountReaderStub {
	return &accountReaderStub{}
}

func (s *accountReaderStub) GetAll(ctx context.Context, includeArchived bool) ([]account.Account, error) {
	var accounts []account.Account
	for _, acc := range s.accounts {
		if !includeArchived && acc.Status == account.StatusArchived {
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (s *accountReaderStub) reset() {
	s.accounts = nil
}

type liabilityReaderStub struct {
	liabilities []liability.Liability
}

func newLiabilityReaderStub() *liabilityReaderStub {
	return &liabilityReaderStub{}
}

func (s *liabilityReaderStub) GetAll(ctx context.Context, includeArchived bool) ([]liability.Liability, error) {
	var liabilities []liability.Liability
	for _, l := range s.liabilities {
		if !includeArchived && l.Status == liability.StatusArchived {
			continue
		}
		liabilities = append(liabilities, l)
	}
	return liabilities, nil
}

func (s *liabilityReaderStub) reset() {
	s.liabilities = nil
}

type transactionReaderStub struct {
	transactions []transaction.Transaction
}

func newTransactionReaderStub() *transactionReaderStub {
	return &transactionReaderStub{}
}

func (s *transactionReaderStub) List(ctx context.Context, filter transaction.Filter) ([]transaction.Transaction, error) {
	var matched []transaction.Transaction
	for _, entry := range s.transactions {
		if !filter.From.IsZero() && entry.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && entry.Date.After(filter.To) {
			continue
		}
		if filter.Type != "" && entry.Type != filter.Type {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, nil
}

func (s *transactionReaderStub) reset() {
	s.transactions = nil
}

type paymentReaderStub struct {
	payments []payment.Payment
}

func newPaymentReaderStub() *paymentReaderStub {
	return &paymentReaderStub{}
}

func (s *paymentReaderStub) List(ctx context.Context, filter payment.Filter) ([]payment.Payment, error) {
	var matched []payment.Payment
	for _, p := range s.payments {
		if filter.SourceType != "" && p.SourceType != filter.SourceType {
			continue
		}
		if filter.SourceId != 0 && p.SourceId != filter.SourceId {
			continue
		}
		if !filter.From.IsZero() && p.PaidAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && p.PaidAt.After(filter.To) {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

func (s *paymentReaderStub) reset() {
	s.payments = nil
}

type categoryReaderStub struct {
	categories []category.Category
}

func newCategoryReaderStub() *categoryReaderStub {
	return &categoryReaderStub{}
}

func (s *categoryReaderStub) GetAll(ctx context.Context) ([]category.Category, error) {
	return s.categories, nil
}

func (s *categoryReaderStub) reset() {
	s.categories = nil
}

type billReaderStub struct {
	bills []bill.Bill
}

func newBillReaderStub() *billReaderStub {
	return &billReaderStub{}
}

func (s *billReaderStub) Upcoming(ctx context.Context, days int) ([]bill.Bill, error) {
	return s.bills, nil
}

func (s *billReaderStub) reset() {
	s.bills = nil
}

type goalReaderStub struct {
	goals []goal.Goal
}

func newGoalReaderStub() *goalReaderStub {
	return &goalReaderStub{}
}

func (s *goalReaderStub) GetAll(ctx context.Context, includeArchived bool) ([]goal.Goal, error) {
	var goals []goal.Goal
	for _, g := range s.goals {
		if !includeArchived && g.Status == goal.StatusArchived {
			continue
		}
		goals = append(goals, g)
	}
	return goals, nil
}

func (s *goalReaderStub) reset() {
	s.goals = nil
}

// stubRates is a deterministic live-rate source for tests.
type stubRates struct {
	rates map[string]decimal.Decimal
}

func (s *stubRates) Rate(from string, to string) (decimal.Decimal, bool) {
	rate, ok := s.rates[from+"/"+to]
	return rate, ok
}
