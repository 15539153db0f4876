package bill

import (
	"context"
	"fmt"

	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/currency"
	"github.com/centavo/centavo/pkg/payment"
	"github.com/centavo/centavo/pkg/transaction"
	"github.com/centavo/centavo/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PaymentRecorder is the slice of the payment service used for bill payment
// history.
type PaymentRecorder interface {
	Record(ctx context.Context, payment payment.Payment) (payment.Payment, error)
	List(ctx context.Context, filter payment.Filter) ([]payment.Payment, error)
}

// TransactionCreator mirrors bill payments into account history.
type TransactionCreator interface {
	Create(ctx context.Context, transaction transaction.Transaction) (transaction.Transaction, error)
}

// PayRequest settles a bill. A zero amount means the bill's own amount.
type PayRequest struct {
	Amount          decimal.Decimal
	SourceAccountId int
	Note            string
}

type Service interface {
	Create(ctx context.Context, bill Bill) (Bill, error)
	Get(ctx context.Context, id int) (Bill, error)
	GetAll(ctx context.Context) ([]Bill, error)
	Upcoming(ctx context.Context, days int) ([]Bill, error)
	Update(ctx context.Context, bill Bill) (Bill, error)
	Delete(ctx context.Context, id int) error
	Pay(ctx context.Context, id int, request PayRequest) (Bill, error)
	Insights(ctx context.Context) ([]Insight, error)
}

type ServiceImpl struct {
	repo         Repository
	payments     PaymentRecorder
	transactions TransactionCreator
	clock        utils.Clock
}

func NewService(repo Repository, payments PaymentRecorder, transactions TransactionCreator) *ServiceImpl {
	return &ServiceImpl{
		repo:         repo,
		payments:     payments,
		transactions: transactions,
		clock:        &utils.SystemClock{},
	}
}

func (s *ServiceImpl) Create(ctx context.Context, bill Bill) (Bill, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Bill{}, fmt.Errorf("failed to get current user: %w", err)
	}
	bill, err = s.validate(ctx, bill)
	if err != nil {
		return Bill{}, err
	}
	return s.repo.Create(ctx, userId, bill)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Bill, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Bill{}, fmt.Errorf("failed to get current user: %w", err)
	}
	bill, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return Bill{}, err
	}
	bill.Status = bill.EffectiveStatus(s.clock.Now())
	return bill, nil
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Bill, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	bills, err := s.repo.GetAll(ctx, userId)
	if err != nil {
		return nil, err
	}
	return s.effectiveStatuses(bills), nil
}

// Upcoming returns unpaid bills due within the window, overdue ones included,
// sorted by due date.
func (s *ServiceImpl) Upcoming(ctx context.Context, days int) ([]Bill, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if days <= 0 {
		days = 14
	}
	until := s.clock.Now().AddDate(0, 0, days)
	bills, err := s.repo.ListUpcoming(ctx, userId, until)
	if err != nil {
		return nil, err
	}
	return s.effectiveStatuses(bills), nil
}

func (s *ServiceImpl) Update(ctx context.Context, bill Bill) (Bill, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Bill{}, fmt.Errorf("failed to get current user: %w", err)
	}
	bill, err = s.validate(ctx, bill)
	if err != nil {
		return Bill{}, err
	}
	return s.repo.Update(ctx, userId, bill)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

// Pay settles the bill. Recurring bills roll their due date forward one
// recurrence and stay upcoming; one-off bills become paid. The payment lands
// in history and, when an account is involved, in its transactions.
func (s *ServiceImpl) Pay(ctx context.Context, id int, request PayRequest) (Bill, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Bill{}, fmt.Errorf("failed to get current user: %w", err)
	}

	bill, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return Bill{}, err
	}
	if bill.Status == StatusPaid {
		return Bill{}, fmt.Errorf("%w: bill %d is already paid", ErrBillInvalid, bill.Id)
	}

	amount := request.Amount
	if amount.IsZero() {
		amount = bill.Amount
	}
	if !amount.IsPositive() {
		return Bill{}, fmt.Errorf("%w: payment amount must be positive", ErrBillInvalid)
	}

	status := StatusPaid
	dueDate := bill.DueDate
	if bill.Recurrence != RecurrenceNone {
		status = StatusUpcoming
		dueDate = bill.NextDueDate()
		log.Debugf("bill %d rolls forward to %s", bill.Id, dueDate.Format("2006-01-02"))
	}
	if err := s.repo.MarkPaid(ctx, userId, id, status, dueDate); err != nil {
		return Bill{}, err
	}
	bill.Status = status
	bill.DueDate = dueDate

	_, err = s.payments.Record(ctx, payment.Payment{
		SourceType: payment.SourceBill,
		SourceId:   bill.Id,
		Amount:     amount,
		Currency:   bill.Currency,
		PaidAt:     s.clock.Now(),
		Note:       request.Note,
	})
	if err != nil {
		return bill, fmt.Errorf("bill %d paid but payment history failed: %w", bill.Id, err)
	}

	accountId := request.SourceAccountId
	if accountId == 0 {
		accountId = bill.LinkedAccountId
	}
	if accountId != 0 {
		_, err := s.transactions.Create(ctx, transaction.Transaction{
			AccountId:   accountId,
			CategoryId:  bill.CategoryId,
			Type:        transaction.TypeExpense,
			Amount:      amount,
			Date:        s.clock.Now(),
			Description: "Bill payment: " + bill.Name,
			Notes:       request.Note,
		})
		if err != nil {
			return bill, fmt.Errorf("bill %d paid but account transaction failed: %w", bill.Id, err)
		}
	}
	return bill, nil
}

func (s *ServiceImpl) validate(ctx context.Context, bill Bill) (Bill, error) {
	if bill.Name == "" {
		return Bill{}, fmt.Errorf("%w: name is required", ErrBillInvalid)
	}
	if !bill.Amount.IsPositive() {
		return Bill{}, fmt.Errorf("%w: amount must be positive", ErrBillInvalid)
	}
	if bill.DueDate.IsZero() {
		return Bill{}, fmt.Errorf("%w: due date is required", ErrBillInvalid)
	}
	if bill.Recurrence == "" {
		bill.Recurrence = RecurrenceNone
	}
	if !ValidRecurrence(bill.Recurrence) {
		return Bill{}, fmt.Errorf("%w: unknown recurrence %q", ErrBillInvalid, bill.Recurrence)
	}
	if bill.Status == "" {
		bill.Status = StatusUpcoming
	}
	if bill.Status != StatusUpcoming && bill.Status != StatusPaid {
		return Bill{}, fmt.Errorf("%w: unknown status %q", ErrBillInvalid, bill.Status)
	}
	if bill.Currency == "" {
		currentUser, err := user.CurrentUser(ctx)
		if err != nil {
			return Bill{}, fmt.Errorf("failed to get current user: %w", err)
		}
		bill.Currency = currentUser.Settings.PrimaryCurrency
	}
	if !currency.IsKnown(bill.Currency) {
		return Bill{}, fmt.Errorf("%w: unknown currency %q", ErrBillInvalid, bill.Currency)
	}
	return bill, nil
}

// effectiveStatuses stamps clock-derived statuses onto a listing.
func (s *ServiceImpl) effectiveStatuses(bills []Bill) []Bill {
	now := s.clock.Now()
	for i := range bills {
		bills[i].Status = bills[i].EffectiveStatus(now)
	}
	return bills
}
