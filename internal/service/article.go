package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"gardencms/internal/like"
	"gardencms/internal/logger"
	"gardencms/internal/model"
	"gardencms/internal/repository"
	"gardencms/internal/sanitize"
	"gardencms/internal/slug"
	"gardencms/internal/storage"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	featuredLimit = 5
	popularLimit  = 5
	relatedLimit  = 4
	catalogLimit  = 10
)

// ErrStorageDisabled is returned by AddImage when no object store is configured.
var ErrStorageDisabled = fmt.Errorf("%w: image storage is not configured", ErrInvalidInput)

// CreateArticleInput is the payload for a new article. Slug is derived from
// Title when empty.
type CreateArticleInput struct {
	Title                string              `json:"title" validate:"required,max=300"`
	Description          string              `json:"description" validate:"required"`
	Content              string              `json:"content"`
	Slug                 string              `json:"slug"`
	PrimaryCategoryID    string              `json:"primaryCategoryId" validate:"required,uuid"`
	SecondaryCategoryIDs []string            `json:"secondaryCategoryIds" validate:"omitempty,dive,uuid"`
	Published            bool                `json:"published"`
	Order                int                 `json:"order" validate:"gte=0"`
	CoverImage           string              `json:"coverImage"`
	ProductLinks         []model.ProductLink `json:"productLinks" validate:"omitempty,dive"`
	Images               []model.Image       `json:"images" validate:"omitempty,dive"`
	Tags                 []string            `json:"tags"`
	Featured             bool                `json:"featured"`
	Metadata             map[string]any      `json:"metadata"`
	Care                 *model.CareInfo     `json:"care"`
	Growing              *model.Growing      `json:"growing"`
	Pests                *model.PestInfo     `json:"pests"`
	Traits               *model.PlantTraits  `json:"traits"`
}

// UpdateArticleInput is a partial update. Nil fields are left unchanged; a
// non-nil empty slice clears the list.
type UpdateArticleInput struct {
	Title                *string             `json:"title" validate:"omitnil,min=1,max=300"`
	Description          *string             `json:"description" validate:"omitnil,min=1"`
	Content              *string             `json:"content"`
	Slug                 *string             `json:"slug"`
	PrimaryCategoryID    *string             `json:"primaryCategoryId" validate:"omitnil,uuid"`
	SecondaryCategoryIDs []string            `json:"secondaryCategoryIds" validate:"omitempty,dive,uuid"`
	Published            *bool               `json:"published"`
	Order                *int                `json:"order" validate:"omitnil,gte=0"`
	CoverImage           *string             `json:"coverImage"`
	ProductLinks         []model.ProductLink `json:"productLinks" validate:"omitempty,dive"`
	Images               []model.Image       `json:"images" validate:"omitempty,dive"`
	Tags                 []string            `json:"tags"`
	Featured             *bool               `json:"featured"`
	Metadata             map[string]any      `json:"metadata"`
	Care                 *model.CareInfo     `json:"care"`
	Growing              *model.Growing      `json:"growing"`
	Pests                *model.PestInfo     `json:"pests"`
	Traits               *model.PlantTraits  `json:"traits"`
}

// ArticleListParams selects one page of articles. Page starts at 1.
type ArticleListParams struct {
	Page    int
	Limit   int
	Filter  repository.ArticleFilter
	Sort    repository.ArticleSort
	IsAdmin bool
}

// ArticleListResult is the service-level DTO for paginated articles.
type ArticleListResult struct {
	Items      []model.Article `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

// ImageUpload describes a file streamed into an article's gallery.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	AltText     string
	Primary     bool
}

// ArticleService defines the article use cases.
type ArticleService interface {
	Create(ctx context.Context, in CreateArticleInput) (*model.Article, error)
	List(ctx context.Context, p ArticleListParams) (*ArticleListResult, error)

	// Get and GetBySlug hide drafts from non-admins as ErrNotFound.
	Get(ctx context.Context, id string, isAdmin bool) (*model.Article, error)
	GetBySlug(ctx context.Context, slug string, incrementViews, isAdmin bool) (*model.Article, error)

	Update(ctx context.Context, id string, in UpdateArticleInput) (*model.Article, error)

	// Delete removes the article, then its stored images best-effort.
	Delete(ctx context.Context, id string) error

	Featured(ctx context.Context) ([]model.Article, error)
	Popular(ctx context.Context) ([]model.Article, error)
	Related(ctx context.Context, id string) ([]model.Article, error)
	Edible(ctx context.Context) ([]model.Article, error)
	Blooming(ctx context.Context, season string) ([]model.Article, error)
	PetSafe(ctx context.Context) ([]model.Article, error)

	// ToggleLike adds or removes an anonymous like.
	ToggleLike(ctx context.Context, id string, req like.Request) (like.Result, error)

	// AddImage uploads a file to object storage and appends it to the
	// article's images, deleting the object again if the row update fails.
	AddImage(ctx context.Context, id string, up ImageUpload) (*model.Article, error)
}

// articleService is a concrete implementation of ArticleService.
type articleService struct {
	repo       repository.ArticleRepository
	categories repository.CategoryRepository
	store      storage.Storage
	guard      *like.Guard
	log        logger.Logger
	now        func() time.Time
}

// ArticleOption customizes an ArticleService.
type ArticleOption func(*articleService)

// WithArticleClock overrides the time source used for timestamps and likes.
func WithArticleClock(now func() time.Time) ArticleOption {
	return func(s *articleService) {
		s.now = now
		s.guard = like.NewGuard(like.WithClock(now))
	}
}

// NewArticleService constructs a new ArticleService. store may be nil, in
// which case image uploads are rejected.
func NewArticleService(
	repo repository.ArticleRepository,
	categories repository.CategoryRepository,
	store storage.Storage,
	log logger.Logger,
	opts ...ArticleOption,
) ArticleService {
	s := &articleService{
		repo:       repo,
		categories: categories,
		store:      store,
		guard:      like.NewGuard(),
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *articleService) Create(ctx context.Context, in CreateArticleInput) (*model.Article, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	sl := slug.Generate(slug.Resolve(in.Slug, in.Title))
	if sl == "" {
		return nil, fmt.Errorf("%w: slug cannot be empty", ErrInvalidInput)
	}
	if err := s.ensureSlugFree(ctx, sl, ""); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, in.PrimaryCategoryID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a := &model.Article{
		ID:                   uuid.New().String(),
		Title:                in.Title,
		Description:          in.Description,
		Content:              sanitize.HTML(in.Content),
		Slug:                 sl,
		PrimaryCategoryID:    in.PrimaryCategoryID,
		SecondaryCategoryIDs: in.SecondaryCategoryIDs,
		Published:            in.Published,
		Order:                in.Order,
		CoverImage:           in.CoverImage,
		ProductLinks:         in.ProductLinks,
		Images:               in.Images,
		Tags:                 in.Tags,
		Featured:             in.Featured,
		Metadata:             in.Metadata,
		Care:                 in.Care,
		Growing:              in.Growing,
		Pests:                in.Pests,
		Traits:               in.Traits,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	a.MarkPublished(now)

	stored, err := s.repo.Create(ctx, a)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: slug '%s' is already in use", ErrConflict, sl)
		}
		return nil, fmt.Errorf("create article: %w", err)
	}
	s.log.Info("article created", logger.String("article_id", stored.ID), logger.String("slug", stored.Slug))
	return stored, nil
}

func (s *articleService) List(ctx context.Context, p ArticleListParams) (*ArticleListResult, error) {
	page, limit, err := normalizePage(p.Page, p.Limit)
	if err != nil {
		return nil, err
	}

	f := p.Filter
	if !p.IsAdmin {
		published := true
		f.Published = &published
	}
	if f.PrimaryCategoryID != "" {
		if err := checkID("category", f.PrimaryCategoryID); err != nil {
			return nil, err
		}
	}
	f.SecondaryCategoryIDs = validIDs(f.SecondaryCategoryIDs)

	res, err := s.repo.List(ctx, repository.ArticleQuery{
		Filter: f,
		Sort:   p.Sort,
		Page:   repository.PageQuery{Limit: limit, Offset: (page - 1) * limit},
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return &ArticleListResult{
		Items:      res.Items,
		Total:      res.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(res.Total, limit),
	}, nil
}

func (s *articleService) Get(ctx context.Context, id string, isAdmin bool) (*model.Article, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Published && !isAdmin {
		return nil, fmt.Errorf("%w: article %s", ErrNotFound, id)
	}
	return a, nil
}

func (s *articleService) GetBySlug(ctx context.Context, sl string, incrementViews, isAdmin bool) (*model.Article, error) {
	a, err := s.repo.FindBySlug(ctx, sl)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: article with slug %s", ErrNotFound, sl)
		}
		return nil, fmt.Errorf("find article: %w", err)
	}
	if !a.Published && !isAdmin {
		return nil, fmt.Errorf("%w: article with slug %s", ErrNotFound, sl)
	}
	if incrementViews {
		if err := s.repo.IncrementViews(ctx, a.ID); err != nil {
			return nil, fmt.Errorf("increment views: %w", err)
		}
		a.Views++
	}
	return a, nil
}

func (s *articleService) Update(ctx context.Context, id string, in UpdateArticleInput) (*model.Article, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Content != nil {
		a.Content = sanitize.HTML(*in.Content)
	}
	if in.Slug != nil {
		sl := slug.Generate(*in.Slug)
		if sl == "" {
			return nil, fmt.Errorf("%w: slug cannot be empty", ErrInvalidInput)
		}
		if sl != a.Slug {
			if err := s.ensureSlugFree(ctx, sl, a.ID); err != nil {
				return nil, err
			}
			a.Slug = sl
		}
	}
	if in.PrimaryCategoryID != nil && *in.PrimaryCategoryID != a.PrimaryCategoryID {
		if err := s.ensureCategory(ctx, *in.PrimaryCategoryID); err != nil {
			return nil, err
		}
		a.PrimaryCategoryID = *in.PrimaryCategoryID
	}
	if in.SecondaryCategoryIDs != nil {
		a.SecondaryCategoryIDs = in.SecondaryCategoryIDs
	}
	if in.Published != nil {
		a.Published = *in.Published
	}
	if in.Order != nil {
		a.Order = *in.Order
	}
	if in.CoverImage != nil {
		a.CoverImage = *in.CoverImage
	}
	if in.ProductLinks != nil {
		a.ProductLinks = in.ProductLinks
	}
	if in.Images != nil {
		a.Images = in.Images
	}
	if in.Tags != nil {
		a.Tags = in.Tags
	}
	if in.Featured != nil {
		a.Featured = *in.Featured
	}
	if in.Metadata != nil {
		a.Metadata = in.Metadata
	}
	if in.Care != nil {
		a.Care = in.Care
	}
	if in.Growing != nil {
		a.Growing = in.Growing
	}
	if in.Pests != nil {
		a.Pests = in.Pests
	}
	if in.Traits != nil {
		a.Traits = in.Traits
	}

	now := s.now().UTC()
	a.MarkPublished(now)
	a.UpdatedAt = now

	return s.save(ctx, a)
}

func (s *articleService) Delete(ctx context.Context, id string) error {
	a, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: article %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete article: %w", err)
	}

	if s.store != nil {
		for _, img := range a.Images {
			if img.StorageKey == "" {
				continue
			}
			if err := s.store.Delete(ctx, img.StorageKey); err != nil {
				s.log.Warn("delete article image",
					logger.String("article_id", id),
					logger.String("key", img.StorageKey),
					logger.Error(err),
				)
			}
		}
	}
	s.log.Info("article deleted", logger.String("article_id", id))
	return nil
}

func (s *articleService) Featured(ctx context.Context) ([]model.Article, error) {
	featured := true
	return s.published(ctx, repository.ArticleFilter{Featured: &featured}, repository.SortDateDesc, featuredLimit)
}

func (s *articleService) Popular(ctx context.Context) ([]model.Article, error) {
	return s.published(ctx, repository.ArticleFilter{}, repository.SortPopularity, popularLimit)
}

func (s *articleService) Related(ctx context.Context, id string) ([]model.Article, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListRelated(ctx, a, relatedLimit)
	if err != nil {
		return nil, fmt.Errorf("list related articles: %w", err)
	}
	return items, nil
}

func (s *articleService) Edible(ctx context.Context) ([]model.Article, error) {
	edible := true
	return s.published(ctx, repository.ArticleFilter{Edible: &edible}, repository.SortDateDesc, catalogLimit)
}

func (s *articleService) Blooming(ctx context.Context, season string) ([]model.Article, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	return s.published(ctx, repository.ArticleFilter{BloomSeason: season}, repository.SortDateDesc, catalogLimit)
}

func (s *articleService) PetSafe(ctx context.Context) ([]model.Article, error) {
	toxic := false
	return s.published(ctx, repository.ArticleFilter{ToxicToAnimals: &toxic}, repository.SortDateDesc, catalogLimit)
}

func (s *articleService) ToggleLike(ctx context.Context, id string, req like.Request) (like.Result, error) {
	if strings.TrimSpace(req.Identifier) == "" {
		return like.Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, like.ErrIdentifierRequired)
	}
	if err := checkID("article", id); err != nil {
		return like.Result{}, err
	}

	var res like.Result
	err := s.repo.ModifyLikes(ctx, id, func(st *like.State) error {
		var err error
		res, err = s.guard.Toggle(st, req)
		return err
	})
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, sql.ErrNoRows):
		return like.Result{}, fmt.Errorf("%w: article %s", ErrNotFound, id)
	case errors.Is(err, like.ErrDailyLimit):
		return like.Result{}, fmt.Errorf("%w: %v", ErrRateLimited, err)
	case errors.Is(err, like.ErrBotUserAgent):
		s.log.Warn("like rejected", logger.String("article_id", id), logger.String("user_agent", req.UserAgent))
		return like.Result{}, fmt.Errorf("%w: %v", ErrBotDetected, err)
	case errors.Is(err, like.ErrInvalidUserAgent), errors.Is(err, like.ErrIdentifierRequired):
		return like.Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return like.Result{}, fmt.Errorf("toggle like: %w", err)
	}
}

func (s *articleService) AddImage(ctx context.Context, id string, up ImageUpload) (*model.Article, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if up.Reader == nil {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if !strings.HasPrefix(up.ContentType, "image/") {
		return nil, fmt.Errorf("%w: file must be an image", ErrInvalidInput)
	}
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	key := path.Join("articles", a.ID, uuid.New().String()+strings.ToLower(filepath.Ext(up.Filename)))
	obj, err := s.store.Put(ctx, key, up.Reader, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: up.ContentType,
		Metadata:    map[string]string{"original-filename": up.Filename},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	alt := up.AltText
	if alt == "" {
		alt = a.Title
	}
	if up.Primary {
		for i := range a.Images {
			a.Images[i].Primary = false
		}
	}
	a.Images = append(a.Images, model.Image{
		URL:        obj.URL,
		AltText:    alt,
		Primary:    up.Primary,
		StorageKey: obj.Key,
	})
	a.UpdatedAt = s.now().UTC()

	stored, err := s.save(ctx, a)
	if err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *articleService) find(ctx context.Context, id string) (*model.Article, error) {
	if err := checkID("article", id); err != nil {
		return nil, err
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: article %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("find article: %w", err)
	}
	return a, nil
}

func (s *articleService) save(ctx context.Context, a *model.Article) (*model.Article, error) {
	stored, err := s.repo.Update(ctx, a)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("%w: article %s", ErrNotFound, a.ID)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("%w: slug '%s' is already in use", ErrConflict, a.Slug)
		case errors.Is(err, repository.ErrInUse):
			return nil, fmt.Errorf("%w: primary category does not exist", ErrInvalidInput)
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	return stored, nil
}

func (s *articleService) published(ctx context.Context, f repository.ArticleFilter, sort repository.ArticleSort, limit int) ([]model.Article, error) {
	published := true
	f.Published = &published
	res, err := s.repo.List(ctx, repository.ArticleQuery{
		Filter: f,
		Sort:   sort,
		Page:   repository.PageQuery{Limit: limit},
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return res.Items, nil
}

func (s *articleService) ensureSlugFree(ctx context.Context, sl, excludeID string) error {
	taken, err := s.repo.SlugTaken(ctx, sl, excludeID)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: slug '%s' is already in use", ErrConflict, sl)
	}
	return nil
}

func (s *articleService) ensureCategory(ctx context.Context, id string) error {
	if err := checkID("category", id); err != nil {
		return err
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: primary category %s does not exist", ErrInvalidInput, id)
		}
		return fmt.Errorf("find category: %w", err)
	}
	return nil
}

// normalizePage applies the page defaults and rejects pages whose offset
// would overflow.
func normalizePage(page, limit int) (int, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if page-1 > math.MaxInt/limit {
		return 0, 0, fmt.Errorf("%w: page %d is out of range", ErrInvalidInput, page)
	}
	return page, limit, nil
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// validIDs drops entries that are not well-formed ids.
func validIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			out = append(out, id)
		}
	}
	return out
}
