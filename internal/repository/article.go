package repository

import (
	"context"

	"gardencms/internal/like"
	"gardencms/internal/model"
)

// ArticleSort selects the ordering of article listings.
type ArticleSort string

const (
	SortTitleAsc   ArticleSort = "title_asc"
	SortTitleDesc  ArticleSort = "title_desc"
	SortDateAsc    ArticleSort = "date_asc"
	SortDateDesc   ArticleSort = "date_desc"
	SortPopularity ArticleSort = "popularity"
	SortViews      ArticleSort = "views"
)

// ParseArticleSort maps a query value to a sort, defaulting to newest first.
func ParseArticleSort(s string) ArticleSort {
	switch ArticleSort(s) {
	case SortTitleAsc, SortTitleDesc, SortDateAsc, SortDateDesc, SortPopularity, SortViews:
		return ArticleSort(s)
	default:
		return SortDateDesc
	}
}

// ArticleFilter lists optional constraints combined with AND.
// Nil pointers and empty slices mean "no constraint".
type ArticleFilter struct {
	Published            *bool
	Featured             *bool
	PrimaryCategoryID    string
	SecondaryCategoryIDs []string // any of
	Tags                 []string // any of
	Search               string
	Edible               *bool
	Invasive             *bool
	BloomSeason          string
	ToxicToHumans        *bool
	ToxicToAnimals       *bool
	SoilPHMin            *float64
	SoilPHMax            *float64
	ExcludeID            string
}

// ArticleQuery combines filtering, ordering and paging.
type ArticleQuery struct {
	Filter ArticleFilter
	Sort   ArticleSort
	Page   PageQuery
}

// ArticleRepository defines data access for articles using SQL queries only.
type ArticleRepository interface {
	Create(ctx context.Context, a *model.Article) (*model.Article, error)

	// FindByID returns sql.ErrNoRows when no article has that id.
	FindByID(ctx context.Context, id string) (*model.Article, error)

	// FindBySlug returns sql.ErrNoRows when no article has that slug.
	FindBySlug(ctx context.Context, slug string) (*model.Article, error)

	// SlugTaken reports whether slug belongs to an article other than excludeID.
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)

	// List returns one page of matching articles and the total match count.
	List(ctx context.Context, q ArticleQuery) (*PageResult[model.Article], error)

	// ListRelated returns published articles sharing the primary category, a
	// secondary category or a tag with a, newest first.
	ListRelated(ctx context.Context, a *model.Article, limit int) ([]model.Article, error)

	// Update overwrites the editable fields of a and returns the stored row.
	Update(ctx context.Context, a *model.Article) (*model.Article, error)

	// Delete returns sql.ErrNoRows when nothing was deleted.
	Delete(ctx context.Context, id string) error

	// IncrementViews atomically adds one view.
	IncrementViews(ctx context.Context, id string) error

	// ModifyLikes locks the article row, lets fn mutate its like state and
	// stores the result, keeping like_count equal to the ledger length.
	// An error from fn rolls the transaction back and is returned as is.
	ModifyLikes(ctx context.Context, id string, fn func(st *like.State) error) error
}
