package goal

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// stubGoalRepository is an in-memory Repository used by unit tests.
type stubGoalRepository struct {
	goals  map[int]map[int]Goal // userId -> goalId -> goal
	nextId int
}

func newStubGoalRepository() *stubGoalRepository {
	return &stubGoalRepository{goals: map[int]map[int]Goal{}, nextId: 1}
}

func (r *stubGoalRepository) Cleanup() {
	r.goals = map[int]map[int]Goal{}
	r.nextId = 1
}

func (r *stubGoalRepository) Create(ctx context.Context, userId int, goal Goal) (Goal, error) {
	if r.goals[userId] == nil {
		r.goals[userId] = map[int]Goal{}
	}
	goal.Id = r.nextId
	r.nextId++
	r.goals[userId][goal.Id] = goal
	return goal, nil
}

func (r *stubGoalRepository) Get(ctx context.Context, userId int, id int) (Goal, error) {
	goal, ok := r.goals[userId][id]
	if !ok {
		return Goal{}, ErrGoalNotFound
	}
	return goal, nil
}

func (r *stubGoalRepository) GetAll(ctx context.Context, userId int, includeArchived bool) ([]Goal, error) {
	all := make([]Goal, 0, len(r.goals[userId]))
	for _, goal := range r.goals[userId] {
		if !includeArchived && goal.Status == StatusArchived {
			continue
		}
		all = append(all, goal)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Id < all[j].Id })
	return all, nil
}

func (r *stubGoalRepository) Update(ctx context.Context, userId int, goal Goal) (Goal, error) {
	if _, ok := r.goals[userId][goal.Id]; !ok {
		return Goal{}, ErrGoalNotFound
	}
	r.goals[userId][goal.Id] = goal
	return goal, nil
}

func (r *stubGoalRepository) UpdateProgress(ctx context.Context, userId int, id int, saved decimal.Decimal, status Status) error {
	goal, ok := r.goals[userId][id]
	if !ok {
		return ErrGoalNotFound
	}
	goal.SavedAmount = saved
	goal.Status = status
	r.goals[userId][id] = goal
	return nil
}

func (r *stubGoalRepository) Delete(ctx context.Context, userId int, id int) error {
	if _, ok := r.goals[userId][id]; !ok {
		return ErrGoalNotFound
	}
	delete(r.goals[userId], id)
	return nil
}
