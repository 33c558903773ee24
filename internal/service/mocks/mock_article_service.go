package mocks

import (
	"context"

	"gardencms/internal/like"
	"gardencms/internal/model"
	"gardencms/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockArticleService struct {
	mock.Mock
}

func (m *MockArticleService) Create(ctx context.Context, in service.CreateArticleInput) (*model.Article, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) List(ctx context.Context, p service.ArticleListParams) (*service.ArticleListResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArticleListResult), args.Error(1)
}

func (m *MockArticleService) Get(ctx context.Context, id string, isAdmin bool) (*model.Article, error) {
	args := m.Called(ctx, id, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) GetBySlug(ctx context.Context, slug string, incrementViews, isAdmin bool) (*model.Article, error) {
	args := m.Called(ctx, slug, incrementViews, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) Update(ctx context.Context, id string, in service.UpdateArticleInput) (*model.Article, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockArticleService) list(args mock.Arguments) ([]model.Article, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

func (m *MockArticleService) Featured(ctx context.Context) ([]model.Article, error) {
	return m.list(m.Called(ctx))
}

func (m *MockArticleService) Popular(ctx context.Context) ([]model.Article, error) {
	return m.list(m.Called(ctx))
}

func (m *MockArticleService) Related(ctx context.Context, id string) ([]model.Article, error) {
	return m.list(m.Called(ctx, id))
}

func (m *MockArticleService) Edible(ctx context.Context) ([]model.Article, error) {
	return m.list(m.Called(ctx))
}

func (m *MockArticleService) Blooming(ctx context.Context, season string) ([]model.Article, error) {
	return m.list(m.Called(ctx, season))
}

func (m *MockArticleService) PetSafe(ctx context.Context) ([]model.Article, error) {
	return m.list(m.Called(ctx))
}

func (m *MockArticleService) ToggleLike(ctx context.Context, id string, req like.Request) (like.Result, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(like.Result), args.Error(1)
}

func (m *MockArticleService) AddImage(ctx context.Context, id string, up service.ImageUpload) (*model.Article, error) {
	args := m.Called(ctx, id, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}
