package category

import "context"

type RepositoryStub struct {
	nextId int
	data   map[int]map[int]Category // userId -> id -> category
}

func NewStubCategoryRepo() *RepositoryStub {
	return &RepositoryStub{data: map[int]map[int]Category{}}
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.data = map[int]map[int]Category{}
}

func (s *RepositoryStub) forUser(userId int) map[int]Category {
	if s.data[userId] == nil {
		s.data[userId] = map[int]Category{}
	}
	return s.data[userId]
}

func (s *RepositoryStub) Create(ctx context.Context, userId int, category Category) (Category, error) {
	s.nextId++
	category.Id = s.nextId
	s.forUser(userId)[category.Id] = category
	return category, nil
}

func (s *RepositoryStub) CreateMany(ctx context.Context, userId int, categories []Category) error {
	for _, category := range categories {
		if _, err := s.Create(ctx, userId, category); err != nil {
			return err
		}
	}
	return nil
}

func (s *RepositoryStub) Get(ctx context.Context, userId int, id int) (Category, error) {
	category, ok := s.forUser(userId)[id]
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	return category, nil
}

func (s *RepositoryStub) GetAll(ctx context.Context, userId int) ([]Category, error) {
	categories := make([]Category, 0, len(s.forUser(userId)))
	for _, category := range s.forUser(userId) {
		categories = append(categories, category)
	}
	return categories, nil
}

func (s *RepositoryStub) Update(ctx context.Context, userId int, category Category) (Category, error) {
	if _, ok := s.forUser(userId)[category.Id]; !ok {
		return Category{}, ErrCategoryNotFound
	}
	s.forUser(userId)[category.Id] = category
	return category, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, userId int, id int) error {
	if _, ok := s.forUser(userId)[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(s.forUser(userId), id)
	return nil
}
