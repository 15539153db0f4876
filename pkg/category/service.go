package category

import (
	"context"
	"fmt"

	"github.com/centavo/centavo/internal/event_bus"
	"github.com/centavo/centavo/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, category Category) (Category, error)
	Get(ctx context.Context, id int) (Category, error)
	GetAll(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, category Category) (Category, error)
	Delete(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

// RegisterSubscriptions seeds the default category set whenever a new user is
// created. The event payload carries the user id because signup requests are
// not authenticated as the user being created.
func (s *ServiceImpl) RegisterSubscriptions(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped[event_bus.UserCreated](bus, event_bus.UserCreatedEvent,
		func(e event_bus.EventT[event_bus.UserCreated]) error {
			if err := s.repo.CreateMany(e.Context(), e.Data.UserId, defaultCategories); err != nil {
				return fmt.Errorf("seeding default categories for user %d: %w", e.Data.UserId, err)
			}
			log.Debugf("seeded %d default categories for user %d", len(defaultCategories), e.Data.UserId)
			return nil
		})
}

func (s *ServiceImpl) Create(ctx context.Context, category Category) (Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if category.Kind == "" {
		category.Kind = KindExpense
	}
	return s.repo.Create(ctx, userId, category)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) Update(ctx context.Context, category Category) (Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Update(ctx, userId, category)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}
