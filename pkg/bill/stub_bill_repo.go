package bill

import (
	"context"
	"sort"
	"time"
)

// stubBillRepository is an in-memory Repository used by unit tests.
type stubBillRepository struct {
	bills  map[int]map[int]Bill // userId -> billId -> bill
	nextId int
}

func newStubBillRepository() *stubBillRepository {
	return &stubBillRepository{bills: map[int]map[int]Bill{}, nextId: 1}
}

func (r *stubBillRepository) Cleanup() {
	r.bills = map[int]map[int]Bill{}
	r.nextId = 1
}

func (r *stubBillRepository) Create(ctx context.Context, userId int, bill Bill) (Bill, error) {
	if r.bills[userId] == nil {
		r.bills[userId] = map[int]Bill{}
	}
	bill.Id = r.nextId
	r.nextId++
	r.bills[userId][bill.Id] = bill
	return bill, nil
}

func (r *stubBillRepository) Get(ctx context.Context, userId int, id int) (Bill, error) {
	bill, ok := r.bills[userId][id]
	if !ok {
		return Bill{}, ErrBillNotFound
	}
	return bill, nil
}

func (r *stubBillRepository) GetAll(ctx context.Context, userId int) ([]Bill, error) {
	all := make([]Bill, 0, len(r.bills[userId]))
	for _, bill := range r.bills[userId] {
		all = append(all, bill)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DueDate.Equal(all[j].DueDate) {
			return all[i].Id < all[j].Id
		}
		return all[i].DueDate.Before(all[j].DueDate)
	})
	return all, nil
}

func (r *stubBillRepository) ListUpcoming(ctx context.Context, userId int, until time.Time) ([]Bill, error) {
	all, _ := r.GetAll(ctx, userId)
	upcoming := make([]Bill, 0, len(all))
	for _, bill := range all {
		if bill.Status == StatusUpcoming && !bill.DueDate.After(until) {
			upcoming = append(upcoming, bill)
		}
	}
	return upcoming, nil
}

func (r *stubBillRepository) Update(ctx context.Context, userId int, bill Bill) (Bill, error) {
	if _, ok := r.bills[userId][bill.Id]; !ok {
		return Bill{}, ErrBillNotFound
	}
	r.bills[userId][bill.Id] = bill
	return bill, nil
}

func (r *stubBillRepository) MarkPaid(ctx context.Context, userId int, id int, status Status, dueDate time.Time) error {
	bill, ok := r.bills[userId][id]
	if !ok {
		return ErrBillNotFound
	}
	bill.Status = status
	bill.DueDate = dueDate
	r.bills[userId][id] = bill
	return nil
}

func (r *stubBillRepository) Delete(ctx context.Context, userId int, id int) error {
	if _, ok := r.bills[userId][id]; !ok {
		return ErrBillNotFound
	}
	delete(r.bills[userId], id)
	return nil
}
