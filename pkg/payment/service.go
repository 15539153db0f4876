package payment

import (
	"context"
	"fmt"

	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/user"
)

type Service interface {
	Record(ctx context.Context, payment Payment) (Payment, error)
	List(ctx context.Context, filter Filter) ([]Payment, error)
	Delete(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: &utils.SystemClock{}}
}

// Record appends a payment row. PaidAt defaults to now; the source packages
// (bills, liabilities, goals) validate their own side before calling this.
func (s *ServiceImpl) Record(ctx context.Context, payment Payment) (Payment, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Payment{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !ValidSourceType(payment.SourceType) {
		return Payment{}, fmt.Errorf("%w: unknown source type %q", ErrPaymentInvalid, payment.SourceType)
	}
	if payment.SourceId <= 0 {
		return Payment{}, fmt.Errorf("%w: source id is required", ErrPaymentInvalid)
	}
	if !payment.Amount.IsPositive() {
		return Payment{}, fmt.Errorf("%w: amount must be positive", ErrPaymentInvalid)
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = s.clock.Now()
	}
	return s.repo.Create(ctx, userId, payment)
}

func (s *ServiceImpl) List(ctx context.Context, filter Filter) ([]Payment, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if filter.SourceType != "" && !ValidSourceType(filter.SourceType) {
		return nil, fmt.Errorf("%w: unknown source type %q", ErrPaymentInvalid, filter.SourceType)
	}
	return s.repo.List(ctx, userId, filter)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}
