package liability

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

// PaymentRecorder is the slice of the payment service used for payment
// history.
type PaymentRecorder interface {
	Record(ctx context.Context, payment payment.Payment) (payment.Payment, error)
	List(ctx context.Context, filter payment.Filter) ([]payment.Payment, error)
}

// TransactionCreator mirrors payments into the paying account's history.
type TransactionCreator interface {
	Create(ctx context.Context, transaction transaction.Transaction) (transaction.Transaction, error)
}

// PaymentRequest applies one payment against a liability.
type PaymentRequest struct {
	Amount          decimal.Decimal
	SourceAccountId int
	Note            string
}

type Service interface {
	Create(ctx context.Context, liability Liability) (Liability, error)
	Get(ctx context.Context, id int) (Liability, error)
	GetAll(ctx context.Context, includeArchived bool) ([]Liability, error)
	Update(ctx context.Context, liability Liability) (Liability, error)
	Delete(ctx context.Context, id int) error
	RecordPayment(ctx context.Context, id int, request PaymentRequest) (Liability, error)
	Payments(ctx context.Context, id int) ([]payment.Payment, error)
	Payoff(ctx context.Context, id int, monthlyPayment decimal.Decimal) (Payoff, error)
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

func (s *ServiceImpl) Create(ctx context.Context, liability Liability) (Liability, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Liability{}, fmt.Errorf("failed to get current user: %w", err)
	}
	liability, err = s.validate(ctx, liability)
	if err != nil {
		return Liability{}, err
	}
	return s.repo.Create(ctx, userId, liability)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Liability, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Liability{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) GetAll(ctx context.Context, includeArchived bool) ([]Liability, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId, includeArchived)
}

func (s *ServiceImpl) Update(ctx context.Context, liability Liability) (Liability, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Liability{}, fmt.Errorf("failed to get current user: %w", err)
	}
	liability, err = s.validate(ctx, liability)
	if err != nil {
		return Liability{}, err
	}
	return s.repo.Update(ctx, userId, liability)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

// RecordPayment reduces the balance, floors it at zero and marks the debt
// paid_off when it hits zero. The payment lands in history and, when a source
// account is given, in that account's transactions.
func (s *ServiceImpl) RecordPayment(ctx context.Context, id int, request PaymentRequest) (Liability, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Liability{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !request.Amount.IsPositive() {
		return Liability{}, fmt.Errorf("%w: payment amount must be positive", ErrLiabilityInvalid)
	}

	liability, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return Liability{}, err
	}

	balance := liability.Balance.Sub(request.Amount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	status := liability.Status
	if balance.IsZero() && status == StatusActive {
		status = StatusPaidOff
		log.Infof("liability %d fully paid off", liability.Id)
	}

	if err := s.repo.UpdateBalance(ctx, userId, id, balance, status); err != nil {
		return Liability{}, err
	}
	liability.Balance = balance
	liability.Status = status

	_, err = s.payments.Record(ctx, payment.Payment{
		SourceType: payment.SourceLiability,
		SourceId:   liability.Id,
		Amount:     request.Amount,
		Currency:   liability.Currency,
		PaidAt:     s.clock.Now(),
		Note:       request.Note,
	})
	if err != nil {
		return liability, fmt.Errorf("liability %d updated but payment history failed: %w", liability.Id, err)
	}

	if request.SourceAccountId != 0 {
		_, err := s.transactions.Create(ctx, transaction.Transaction{
			AccountId:   request.SourceAccountId,
			Type:        transaction.TypeExpense,
			Amount:      request.Amount,
			Date:        s.clock.Now(),
			Description: "Liability payment: " + liability.Name,
			Notes:       request.Note,
		})
		if err != nil {
			return liability, fmt.Errorf("liability %d updated but account transaction failed: %w", liability.Id, err)
		}
	}
	return liability, nil
}

func (s *ServiceImpl) Payments(ctx context.Context, id int) ([]payment.Payment, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := s.repo.Get(ctx, userId, id); err != nil {
		return nil, err
	}
	return s.payments.List(ctx, payment.Filter{SourceType: payment.SourceLiability, SourceId: id})
}

// Payoff projects clearing the debt with the given monthly payment. A zero
// payment falls back to the liability's minimum payment.
func (s *ServiceImpl) Payoff(ctx context.Context, id int, monthlyPayment decimal.Decimal) (Payoff, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Payoff{}, fmt.Errorf("failed to get current user: %w", err)
	}
	liability, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return Payoff{}, err
	}
	if monthlyPayment.IsZero() {
		monthlyPayment = liability.MinimumPayment
	}
	if monthlyPayment.LessThan(liability.MinimumPayment) {
		return Payoff{}, fmt.Errorf("%w: payment is below the minimum of %s", ErrLiabilityInvalid, liability.MinimumPayment)
	}
	return liability.ProjectPayoff(monthlyPayment)
}

func (s *ServiceImpl) validate(ctx context.Context, liability Liability) (Liability, error) {
	if liability.Name == "" {
		return Liability{}, fmt.Errorf("%w: name is required", ErrLiabilityInvalid)
	}
	if liability.Type == "" {
		liability.Type = TypeOther
	}
	if !ValidType(liability.Type) {
		return Liability{}, fmt.Errorf("%w: unknown type %q", ErrLiabilityInvalid, liability.Type)
	}
	if liability.Balance.IsZero() && liability.Principal.IsPositive() {
		liability.Balance = liability.Principal
	}
	if liability.Principal.IsZero() {
		liability.Principal = liability.Balance
	}
	if liability.Balance.IsNegative() || liability.Principal.IsNegative() {
		return Liability{}, fmt.Errorf("%w: amounts must not be negative", ErrLiabilityInvalid)
	}
	if liability.InterestRate.IsNegative() {
		return Liability{}, fmt.Errorf("%w: interest rate must not be negative", ErrLiabilityInvalid)
	}
	if liability.MinimumPayment.IsNegative() {
		return Liability{}, fmt.Errorf("%w: minimum payment must not be negative", ErrLiabilityInvalid)
	}
	if liability.DueDay < 0 || liability.DueDay > 28 {
		return Liability{}, fmt.Errorf("%w: due day must be between 1 and 28", ErrLiabilityInvalid)
	}
	if liability.Status == "" {
		liability.Status = StatusActive
	}
	if !ValidStatus(liability.Status) {
		return Liability{}, fmt.Errorf("%w: unknown status %q", ErrLiabilityInvalid, liability.Status)
	}
	if liability.Currency == "" {
		currentUser, err := user.CurrentUser(ctx)
		if err != nil {
			return Liability{}, fmt.Errorf("failed to get current user: %w", err)
		}
		liability.Currency = currentUser.Settings.PrimaryCurrency
	}
	if !currency.IsKnown(liability.Currency) {
		return Liability{}, fmt.Errorf("%w: unknown currency %q", ErrLiabilityInvalid, liability.Currency)
	}
	return liability, nil
}
