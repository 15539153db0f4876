package bill

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// stubCycleRepository is an in-memory CycleRepository used by unit tests.
type stubCycleRepository struct {
	cycles map[int]map[int]BillCycle // userId -> cycleId -> cycle
	nextId int
}

func newStubCycleRepository() *stubCycleRepository {
	return &stubCycleRepository{cycles: map[int]map[int]BillCycle{}, nextId: 1}
}

func (r *stubCycleRepository) Cleanup() {
	r.cycles = map[int]map[int]BillCycle{}
	r.nextId = 1
}

func (r *stubCycleRepository) Create(ctx context.Context, userId int, cycle BillCycle) (BillCycle, error) {
	if r.cycles[userId] == nil {
		r.cycles[userId] = map[int]BillCycle{}
	}
	cycle.Id = r.nextId
	r.nextId++
	r.cycles[userId][cycle.Id] = cycle
	return cycle, nil
}

func (r *stubCycleRepository) Get(ctx context.Context, userId int, id int) (BillCycle, error) {
	cycle, ok := r.cycles[userId][id]
	if !ok {
		return BillCycle{}, ErrCycleNotFound
	}
	return cycle, nil
}

func (r *stubCycleRepository) GetOpenByAccount(ctx context.Context, userId int, accountId int) (BillCycle, error) {
	for _, cycle := range r.cycles[userId] {
		if cycle.AccountId == accountId && cycle.Status == CycleOpen {
			return cycle, nil
		}
	}
	return BillCycle{}, ErrCycleNotFound
}

func (r *stubCycleRepository) ListByAccount(ctx context.Context, userId int, accountId int) ([]BillCycle, error) {
	all := make([]BillCycle, 0)
	for _, cycle := range r.cycles[userId] {
		if cycle.AccountId == accountId {
			all = append(all, cycle)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].StartDate.Equal(all[j].StartDate) {
			return all[i].Id > all[j].Id
		}
		return all[i].StartDate.After(all[j].StartDate)
	})
	return all, nil
}

func (r *stubCycleRepository) Close(ctx context.Context, userId int, id int, endDate time.Time, statement decimal.Decimal, minimumDue decimal.Decimal, dueDate time.Time) error {
	cycle, ok := r.cycles[userId][id]
	if !ok || cycle.Status != CycleOpen {
		return ErrCycleNotFound
	}
	cycle.EndDate = endDate
	cycle.StatementBalance = statement
	cycle.MinimumDue = minimumDue
	cycle.DueDate = dueDate
	cycle.Status = CycleClosed
	r.cycles[userId][id] = cycle
	return nil
}

func (r *stubCycleRepository) SetStatus(ctx context.Context, userId int, id int, status CycleStatus) error {
	cycle, ok := r.cycles[userId][id]
	if !ok {
		return ErrCycleNotFound
	}
	cycle.Status = status
	r.cycles[userId][id] = cycle
	return nil
}

func (r *stubCycleRepository) Delete(ctx context.Context, userId int, id int) error {
	if _, ok := r.cycles[userId][id]; !ok {
		return ErrCycleNotFound
	}
	delete(r.cycles[userId], id)
	return nil
}
