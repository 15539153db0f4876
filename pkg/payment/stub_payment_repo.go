package payment

import (
	"context"
	"sort"
)

// stubPaymentRepository is an in-memory Repository used by unit tests, both
// here and in the packages that record payments.
type stubPaymentRepository struct {
	payments map[int]map[int]Payment // userId -> paymentId -> payment
	nextId   int
}

func newStubPaymentRepository() *stubPaymentRepository {
	return &stubPaymentRepository{payments: map[int]map[int]Payment{}, nextId: 1}
}

func (r *stubPaymentRepository) Cleanup() {
	r.payments = map[int]map[int]Payment{}
	r.nextId = 1
}

func (r *stubPaymentRepository) Create(ctx context.Context, userId int, payment Payment) (Payment, error) {
	if r.payments[userId] == nil {
		r.payments[userId] = map[int]Payment{}
	}
	payment.Id = r.nextId
	r.nextId++
	r.payments[userId][payment.Id] = payment
	return payment, nil
}

func (r *stubPaymentRepository) List(ctx context.Context, userId int, filter Filter) ([]Payment, error) {
	all := make([]Payment, 0, len(r.payments[userId]))
	for _, payment := range r.payments[userId] {
		if filter.SourceType != "" && payment.SourceType != filter.SourceType {
			continue
		}
		if filter.SourceId != 0 && payment.SourceId != filter.SourceId {
			continue
		}
		if !filter.From.IsZero() && payment.PaidAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && payment.PaidAt.After(filter.To) {
			continue
		}
		all = append(all, payment)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].PaidAt.Equal(all[j].PaidAt) {
			return all[i].Id > all[j].Id
		}
		return all[i].PaidAt.After(all[j].PaidAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(all) {
			return []Payment{}, nil
		}
		all = all[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (r *stubPaymentRepository) Delete(ctx context.Context, userId int, id int) error {
	if _, ok := r.payments[userId][id]; !ok {
		return ErrPaymentNotFound
	}
	delete(r.payments[userId], id)
	return nil
}
