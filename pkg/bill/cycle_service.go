package bill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/account"
	"github.com/centavo/centavo/pkg/payment"
	"github.com/centavo/centavo/pkg/transaction"
	"github.com/centavo/centavo/pkg/user"
	"github.com/shopspring/decimal"
)

// statementDueDays is how long after the cycle end the payment is due when
// the close request doesn't say otherwise.
const statementDueDays = 21

// AccountReader is what the cycle service needs from the account service.
type AccountReader interface {
	Get(ctx context.Context, id int) (account.Account, error)
}

// CycleTransactions is what the cycle service needs from the transaction
// service: account activity to build statements, and creating the transfer
// that mirrors a statement payment.
type CycleTransactions interface {
	List(ctx context.Context, filter transaction.Filter) ([]transaction.Transaction, error)
	Create(ctx context.Context, transaction transaction.Transaction) (transaction.Transaction, error)
}

// CloseRequest carries the optional overrides for closing a billing cycle.
// Zero values fall back to the clock for EndDate and to EndDate plus
// statementDueDays for DueDate.
type CloseRequest struct {
	EndDate    time.Time
	DueDate    time.Time
	MinimumDue decimal.Decimal
}

// PayCycleRequest records a statement payment. A zero Amount pays the full
// statement balance. When SourceAccountId is set, a transfer from that
// account to the card is created alongside the payment record.
type PayCycleRequest struct {
	Amount          decimal.Decimal
	SourceAccountId int
	Note            string
}

type CycleService interface {
	Open(ctx context.Context, accountId int, startDate time.Time) (BillCycle, error)
	Get(ctx context.Context, id int) (BillCycle, error)
	ListByAccount(ctx context.Context, accountId int) ([]BillCycle, error)
	Close(ctx context.Context, id int, request CloseRequest) (BillCycle, error)
	Pay(ctx context.Context, id int, request PayCycleRequest) (BillCycle, error)
	Delete(ctx context.Context, id int) error
}

type CycleServiceImpl struct {
	repo         CycleRepository
	accounts     AccountReader
	transactions CycleTransactions
	payments     PaymentRecorder
	clock        utils.Clock
}

func NewCycleService(repo CycleRepository, accounts AccountReader, transactions CycleTransactions, payments PaymentRecorder) *CycleServiceImpl {
	return &CycleServiceImpl{
		repo:         repo,
		accounts:     accounts,
		transactions: transactions,
		payments:     payments,
		clock:        &utils.SystemClock{},
	}
}

// Open starts a new billing cycle on a credit-card account. An account can
// only have one open cycle at a time.
func (s *CycleServiceImpl) Open(ctx context.Context, accountId int, startDate time.Time) (BillCycle, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return BillCycle{}, err
	}

	acc, err := s.accounts.Get(ctx, accountId)
	if err != nil {
		return BillCycle{}, err
	}
	if acc.Type != account.TypeCreditCard {
		return BillCycle{}, fmt.Errorf("%w: billing cycles require a credit card account", ErrCycleInvalid)
	}

	_, err = s.repo.GetOpenByAccount(ctx, userId, accountId)
	if err == nil {
		return BillCycle{}, ErrCycleOpen
	}
	if !errors.Is(err, ErrCycleNotFound) {
		return BillCycle{}, err
	}

	if startDate.IsZero() {
		startDate = s.clock.Now()
	}
	cycle := BillCycle{
		AccountId: accountId,
		StartDate: startDate,
		Status:    CycleOpen,
	}
	return s.repo.Create(ctx, userId, cycle)
}

func (s *CycleServiceImpl) Get(ctx context.Context, id int) (BillCycle, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return BillCycle{}, err
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *CycleServiceImpl) ListByAccount(ctx context.Context, accountId int) ([]BillCycle, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByAccount(ctx, userId, accountId)
}

// Close ends an open cycle. The statement balance is computed from the card
// account's activity between the cycle start and end: spending adds to the
// statement, refunds and other income reduce it.
func (s *CycleServiceImpl) Close(ctx context.Context, id int, request CloseRequest) (BillCycle, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return BillCycle{}, err
	}

	cycle, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return BillCycle{}, err
	}
	if cycle.Status != CycleOpen {
		return BillCycle{}, fmt.Errorf("%w: cycle is not open", ErrCycleInvalid)
	}

	endDate := request.EndDate
	if endDate.IsZero() {
		endDate = s.clock.Now()
	}
	if endDate.Before(cycle.StartDate) {
		return BillCycle{}, fmt.Errorf("%w: end date is before the cycle start", ErrCycleInvalid)
	}
	dueDate := request.DueDate
	if dueDate.IsZero() {
		dueDate = endDate.AddDate(0, 0, statementDueDays)
	}
	if request.MinimumDue.IsNegative() {
		return BillCycle{}, fmt.Errorf("%w: minimum due cannot be negative", ErrCycleInvalid)
	}

	statement, err := s.statementBalance(ctx, cycle.AccountId, cycle.StartDate, endDate)
	if err != nil {
		return BillCycle{}, err
	}

	if err := s.repo.Close(ctx, userId, id, endDate, statement, request.MinimumDue, dueDate); err != nil {
		return BillCycle{}, err
	}
	return s.repo.Get(ctx, userId, id)
}

// Pay settles a closed cycle: it records the payment and, when a source
// account is given, mirrors it as a transfer onto the card.
func (s *CycleServiceImpl) Pay(ctx context.Context, id int, request PayCycleRequest) (BillCycle, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return BillCycle{}, err
	}

	cycle, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return BillCycle{}, err
	}
	switch cycle.Status {
	case CyclePaid:
		return BillCycle{}, fmt.Errorf("%w: cycle is already paid", ErrCycleInvalid)
	case CycleOpen:
		return BillCycle{}, fmt.Errorf("%w: close the cycle before paying it", ErrCycleInvalid)
	}

	amount := request.Amount
	if amount.IsZero() {
		amount = cycle.StatementBalance
	}
	if amount.IsNegative() {
		return BillCycle{}, fmt.Errorf("%w: payment amount cannot be negative", ErrCycleInvalid)
	}

	card, err := s.accounts.Get(ctx, cycle.AccountId)
	if err != nil {
		return BillCycle{}, err
	}

	_, err = s.payments.Record(ctx, payment.Payment{
		SourceType: payment.SourceCreditCardCycle,
		SourceId:   cycle.Id,
		Amount:     amount,
		Currency:   card.Currency,
		PaidAt:     s.clock.Now(),
		Note:       request.Note,
	})
	if err != nil {
		return BillCycle{}, err
	}

	if request.SourceAccountId != 0 {
		_, err = s.transactions.Create(ctx, transaction.Transaction{
			AccountId:         request.SourceAccountId,
			TransferAccountId: cycle.AccountId,
			Type:              transaction.TypeTransfer,
			Amount:            amount,
			Date:              s.clock.Now(),
			Description:       fmt.Sprintf("Credit card payment: %s", card.Name),
		})
		if err != nil {
			return BillCycle{}, err
		}
	}

	if err := s.repo.SetStatus(ctx, userId, id, CyclePaid); err != nil {
		return BillCycle{}, err
	}
	cycle.Status = CyclePaid
	return cycle, nil
}

func (s *CycleServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, userId, id)
}

// statementBalance sums the card's activity over the cycle window. Expenses
// add to the owed amount, income (refunds, cashback) subtracts from it.
func (s *CycleServiceImpl) statementBalance(ctx context.Context, accountId int, from, to time.Time) (decimal.Decimal, error) {
	transactions, err := s.transactions.List(ctx, transaction.Filter{
		AccountId: accountId,
		From:      from,
		To:        to,
	})
	if err != nil {
		return decimal.Zero, err
	}
	statement := decimal.Zero
	for _, t := range transactions {
		switch t.Type {
		case transaction.TypeExpense:
			statement = statement.Add(t.Amount)
		case transaction.TypeIncome:
			statement = statement.Sub(t.Amount)
		}
	}
	return statement, nil
}
