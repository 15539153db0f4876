package recurring

import (
	"context"
	"sort"
	"time"
)

// stubRecurringRepository is an in-memory Repository used by unit tests.
type stubRecurringRepository struct {
	recurrings map[int]map[int]RecurringTransaction // userId -> id -> template
	nextId     int
}

func newStubRecurringRepository() *stubRecurringRepository {
	return &stubRecurringRepository{recurrings: map[int]map[int]RecurringTransaction{}, nextId: 1}
}

func (r *stubRecurringRepository) Cleanup() {
	r.recurrings = map[int]map[int]RecurringTransaction{}
	r.nextId = 1
}

func (r *stubRecurringRepository) Create(ctx context.Context, userId int, recurring RecurringTransaction) (RecurringTransaction, error) {
	if r.recurrings[userId] == nil {
		r.recurrings[userId] = map[int]RecurringTransaction{}
	}
	recurring.Id = r.nextId
	r.nextId++
	r.recurrings[userId][recurring.Id] = recurring
	return recurring, nil
}

func (r *stubRecurringRepository) Get(ctx context.Context, userId int, id int) (RecurringTransaction, error) {
	recurring, ok := r.recurrings[userId][id]
	if !ok {
		return RecurringTransaction{}, ErrRecurringNotFound
	}
	return recurring, nil
}

func (r *stubRecurringRepository) GetAll(ctx context.Context, userId int) ([]RecurringTransaction, error) {
	all := make([]RecurringTransaction, 0, len(r.recurrings[userId]))
	for _, recurring := range r.recurrings[userId] {
		all = append(all, recurring)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].NextDate.Equal(all[j].NextDate) {
			return all[i].Id < all[j].Id
		}
		return all[i].NextDate.Before(all[j].NextDate)
	})
	return all, nil
}

func (r *stubRecurringRepository) Update(ctx context.Context, userId int, recurring RecurringTransaction) (RecurringTransaction, error) {
	if _, ok := r.recurrings[userId][recurring.Id]; !ok {
		return RecurringTransaction{}, ErrRecurringNotFound
	}
	r.recurrings[userId][recurring.Id] = recurring
	return recurring, nil
}

func (r *stubRecurringRepository) SetActive(ctx context.Context, userId int, id int, active bool) error {
	recurring, ok := r.recurrings[userId][id]
	if !ok {
		return ErrRecurringNotFound
	}
	recurring.Active = active
	r.recurrings[userId][id] = recurring
	return nil
}

func (r *stubRecurringRepository) UpdateNextDate(ctx context.Context, userId int, id int, nextDate time.Time) error {
	recurring, ok := r.recurrings[userId][id]
	if !ok {
		return ErrRecurringNotFound
	}
	recurring.NextDate = nextDate
	r.recurrings[userId][id] = recurring
	return nil
}

func (r *stubRecurringRepository) Delete(ctx context.Context, userId int, id int) error {
	if _, ok := r.recurrings[userId][id]; !ok {
		return ErrRecurringNotFound
	}
	delete(r.recurrings[userId], id)
	return nil
}
