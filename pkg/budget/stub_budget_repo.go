package budget

import (
	"context"
	"sort"
)

// stubBudgetRepository is an in-memory BudgetRepo used by unit tests.
type stubBudgetRepository struct {
	budgets map[int]map[int]Budget // userId -> budgetId -> budget
	nextId  int
}

func newStubBudgetRepository() *stubBudgetRepository {
	return &stubBudgetRepository{budgets: map[int]map[int]Budget{}, nextId: 1}
}

func (r *stubBudgetRepository) Cleanup() {
	r.budgets = map[int]map[int]Budget{}
	r.nextId = 1
}

func (r *stubBudgetRepository) Create(ctx context.Context, userId int, budget Budget) (Budget, error) {
	if r.budgets[userId] == nil {
		r.budgets[userId] = map[int]Budget{}
	}
	for _, existing := range r.budgets[userId] {
		if existing.CategoryId == budget.CategoryId && existing.Period == budget.Period {
			return Budget{}, ErrBudgetExists
		}
	}
	budget.Id = r.nextId
	r.nextId++
	r.budgets[userId][budget.Id] = budget
	return budget, nil
}

func (r *stubBudgetRepository) Get(ctx context.Context, userId int, id int) (Budget, error) {
	budget, ok := r.budgets[userId][id]
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	return budget, nil
}

func (r *stubBudgetRepository) GetAll(ctx context.Context, userId int) ([]Budget, error) {
	all := make([]Budget, 0, len(r.budgets[userId]))
	for _, budget := range r.budgets[userId] {
		all = append(all, budget)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Id < all[j].Id })
	return all, nil
}

func (r *stubBudgetRepository) Update(ctx context.Context, userId int, budget Budget) (Budget, error) {
	if _, ok := r.budgets[userId][budget.Id]; !ok {
		return Budget{}, ErrBudgetNotFound
	}
	for _, existing := range r.budgets[userId] {
		if existing.Id != budget.Id && existing.CategoryId == budget.CategoryId && existing.Period == budget.Period {
			return Budget{}, ErrBudgetExists
		}
	}
	r.budgets[userId][budget.Id] = budget
	return budget, nil
}

func (r *stubBudgetRepository) Delete(ctx context.Context, userId int, id int) error {
	if _, ok := r.budgets[userId][id]; !ok {
		return ErrBudgetNotFound
	}
	delete(r.budgets[userId], id)
	return nil
}
