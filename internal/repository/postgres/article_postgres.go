package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"gardencms/internal/like"
	"gardencms/internal/model"
	"gardencms/internal/repository"
)

const articleColumns = `id, title, description, content, slug, primary_category_id, secondary_category_ids,
	published, sort_order, cover_image, product_links, images, tags, featured, views, like_count,
	published_at, metadata, care, growing, pests, traits, created_at, updated_at`

// ArticlePostgres is a PostgreSQL implementation of repository.ArticleRepository.
type ArticlePostgres struct {
	db *sql.DB
}

// NewArticlePostgres creates a new ArticlePostgres repository.
func NewArticlePostgres(db *sql.DB) *ArticlePostgres {
	return &ArticlePostgres{db: db}
}

var _ repository.ArticleRepository = (*ArticlePostgres)(nil)

// articleDocs holds the JSON encodings of an article's embedded documents.
type articleDocs struct {
	secondary, links, images, tags, metadata string
	care, growing, pests, traits           any
}

func encodeArticleDocs(a *model.Article) (articleDocs, error) {
	var (
		d   articleDocs
		err error
	)
	if d.secondary, err = jsonArray(a.SecondaryCategoryIDs); err != nil {
		return d, err
	}
	if d.links, err = jsonArray(a.ProductLinks); err != nil {
		return d, err
	}
	if d.images, err = jsonArray(a.Images); err != nil {
		return d, err
	}
	if d.tags, err = jsonArray(a.Tags); err != nil {
		return d, err
	}
	if d.metadata, err = jsonMap(a.Metadata); err != nil {
		return d, err
	}
	if d.care, err = jsonObject(a.Care); err != nil {
		return d, err
	}
	if d.growing, err = jsonObject(a.Growing); err != nil {
		return d, err
	}
	if d.pests, err = jsonObject(a.Pests); err != nil {
		return d, err
	}
	if d.traits, err = jsonObject(a.Traits); err != nil {
		return d, err
	}
	return d, nil
}

func scanArticle(s rowScanner) (*model.Article, error) {
	var (
		a                                        model.Article
		secondary, links, images, tags, metadata []byte
		care, growing, pests, traits             []byte
		publishedAt                              sql.NullTime
	)
	if err := s.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.Content,
		&a.Slug,
		&a.PrimaryCategoryID,
		&secondary,
		&a.Published,
		&a.Order,
		&a.CoverImage,
		&links,
		&images,
		&tags,
		&a.Featured,
		&a.Views,
		&a.LikeCount,
		&publishedAt,
		&metadata,
		&care,
		&growing,
		&pests,
		&traits,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}

	docs := []struct {
		raw []byte
		dst any
	}{
		{secondary, &a.SecondaryCategoryIDs},
		{links, &a.ProductLinks},
		{images, &a.Images},
		{tags, &a.Tags},
		{metadata, &a.Metadata},
		{care, &a.Care},
		{growing, &a.Growing},
		{pests, &a.Pests},
		{traits, &a.Traits},
	}
	for _, d := range docs {
		if err := decodeJSON(d.raw, d.dst); err != nil {
			return nil, fmt.Errorf("decode article %s: %w", a.ID, err)
		}
	}
	return &a, nil
}

func nullTime(a *model.Article) sql.NullTime {
	if a.PublishedAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *a.PublishedAt, Valid: true}
}

// Create inserts a new article row and returns the stored record.
func (r *ArticlePostgres) Create(ctx context.Context, a *model.Article) (*model.Article, error) {
	docs, err := encodeArticleDocs(a)
	if err != nil {
		return nil, fmt.Errorf("encode article: %w", err)
	}
	q := `
		INSERT INTO articles (id, title, description, content, slug, primary_category_id, secondary_category_ids,
			published, sort_order, cover_image, product_links, images, tags, featured,
			published_at, metadata, care, growing, pests, traits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING ` + articleColumns
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.Title,
		a.Description,
		a.Content,
		a.Slug,
		a.PrimaryCategoryID,
		docs.secondary,
		a.Published,
		a.Order,
		a.CoverImage,
		docs.links,
		docs.images,
		docs.tags,
		a.Featured,
		nullTime(a),
		docs.metadata,
		docs.care,
		docs.growing,
		docs.pests,
		docs.traits,
		a.CreatedAt,
		a.UpdatedAt,
	)
	out, err := scanArticle(row)
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// FindByID fetches a single article by its ID.
func (r *ArticlePostgres) FindByID(ctx context.Context, id string) (*model.Article, error) {
	q := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return scanArticle(r.db.QueryRowContext(ctx, q, id))
}

// FindBySlug fetches a single article by its slug.
func (r *ArticlePostgres) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	q := `SELECT ` + articleColumns + ` FROM articles WHERE slug = $1`
	return scanArticle(r.db.QueryRowContext(ctx, q, slug))
}

// SlugTaken reports whether another article already uses slug.
func (r *ArticlePostgres) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`
	params := []any{slug}
	if excludeID != "" {
		q = `SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1 AND id <> $2)`
		params = append(params, excludeID)
	}
	var taken bool
	if err := r.db.QueryRowContext(ctx, q, params...).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// buildArticleFilter turns f into WHERE conditions and their parameters.
func buildArticleFilter(f repository.ArticleFilter, p *args) []string {
	var conds []string
	if f.Published != nil {
		conds = append(conds, "published = "+p.add(*f.Published))
	}
	if f.Featured != nil {
		conds = append(conds, "featured = "+p.add(*f.Featured))
	}
	if f.PrimaryCategoryID != "" {
		conds = append(conds, "primary_category_id = "+p.add(f.PrimaryCategoryID))
	}
	if len(f.SecondaryCategoryIDs) > 0 {
		ids, _ := json.Marshal(f.SecondaryCategoryIDs)
		conds = append(conds, "secondary_category_ids ?| ARRAY(SELECT jsonb_array_elements_text("+p.add(string(ids))+"::jsonb))")
	}
	if len(f.Tags) > 0 {
		tags, _ := json.Marshal(f.Tags)
		conds = append(conds, "tags ?| ARRAY(SELECT jsonb_array_elements_text("+p.add(string(tags))+"::jsonb))")
	}
	if f.Search != "" {
		ph := p.add(likePattern(f.Search))
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE %[1]s OR description ILIKE %[1]s OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE t.tag ILIKE %[1]s))", ph))
	}
	traitFlags := []struct {
		key string
		val *bool
	}{
		{"edible", f.Edible},
		{"invasive", f.Invasive},
		{"toxicToHumans", f.ToxicToHumans},
		{"toxicToAnimals", f.ToxicToAnimals},
	}
	for _, tf := range traitFlags {
		if tf.val != nil {
			conds = append(conds, fmt.Sprintf("COALESCE((traits->>'%s')::boolean, false) = %s", tf.key, p.add(*tf.val)))
		}
	}
	if f.BloomSeason != "" {
		conds = append(conds, "traits->>'bloomSeason' ILIKE "+p.add(likePattern(f.BloomSeason)))
	}
	if f.SoilPHMin != nil {
		conds = append(conds, "(care->'soilPh'->>'min')::numeric >= "+p.add(*f.SoilPHMin))
	}
	if f.SoilPHMax != nil {
		conds = append(conds, "(care->'soilPh'->>'max')::numeric <= "+p.add(*f.SoilPHMax))
	}
	if f.ExcludeID != "" {
		conds = append(conds, "id <> "+p.add(f.ExcludeID))
	}
	return conds
}

func articleOrderBy(s repository.ArticleSort) string {
	switch s {
	case repository.SortTitleAsc:
		return "title ASC, id ASC"
	case repository.SortTitleDesc:
		return "title DESC, id DESC"
	case repository.SortDateAsc:
		return "published_at ASC NULLS LAST, created_at ASC, id ASC"
	case repository.SortPopularity:
		return "like_count DESC, views DESC, id DESC"
	case repository.SortViews:
		return "views DESC, id DESC"
	default:
		return "published_at DESC NULLS LAST, created_at DESC, id DESC"
	}
}

// List returns articles matching q using LIMIT/OFFSET pagination and a total count.
func (r *ArticlePostgres) List(ctx context.Context, q repository.ArticleQuery) (*repository.PageResult[model.Article], error) {
	var p args
	where := whereClause(buildArticleFilter(q.Filter, &p))

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`+where, p.values...).Scan(&total); err != nil {
		return nil, err
	}

	limit := p.add(q.Page.Limit)
	offset := p.add(q.Page.Offset)
	qList := `SELECT ` + articleColumns + ` FROM articles` + where +
		` ORDER BY ` + articleOrderBy(q.Sort) + ` LIMIT ` + limit + ` OFFSET ` + offset

	items, err := r.query(ctx, qList, p.values...)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Article]{Items: items, Total: total}, nil
}

// ListRelated returns published articles sharing a category or tag with a.
func (r *ArticlePostgres) ListRelated(ctx context.Context, a *model.Article, limit int) ([]model.Article, error) {
	var p args
	related := []string{"primary_category_id = " + p.add(a.PrimaryCategoryID)}
	if len(a.SecondaryCategoryIDs) > 0 {
		ids, _ := json.Marshal(a.SecondaryCategoryIDs)
		related = append(related, "secondary_category_ids ?| ARRAY(SELECT jsonb_array_elements_text("+p.add(string(ids))+"::jsonb))")
	}
	if len(a.Tags) > 0 {
		tags, _ := json.Marshal(a.Tags)
		related = append(related, "tags ?| ARRAY(SELECT jsonb_array_elements_text("+p.add(string(tags))+"::jsonb))")
	}
	conds := []string{
		"published = true",
		"id <> " + p.add(a.ID),
		"(" + strings.Join(related, " OR ") + ")",
	}
	q := `SELECT ` + articleColumns + ` FROM articles` + whereClause(conds) +
		` ORDER BY published_at DESC NULLS LAST, id DESC LIMIT ` + p.add(limit)
	return r.query(ctx, q, p.values...)
}

func (r *ArticlePostgres) query(ctx context.Context, q string, params ...any) ([]model.Article, error) {
	rows, err := r.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites the editable columns and returns the stored record.
func (r *ArticlePostgres) Update(ctx context.Context, a *model.Article) (*model.Article, error) {
	docs, err := encodeArticleDocs(a)
	if err != nil {
		return nil, fmt.Errorf("encode article: %w", err)
	}
	q := `
		UPDATE articles SET
			title = $2, description = $3, content = $4, slug = $5, primary_category_id = $6,
			secondary_category_ids = $7, published = $8, sort_order = $9, cover_image = $10,
			product_links = $11, images = $12, tags = $13, featured = $14, published_at = $15,
			metadata = $16, care = $17, growing = $18, pests = $19, traits = $20, updated_at = $21
		WHERE id = $1
		RETURNING ` + articleColumns
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.Title,
		a.Description,
		a.Content,
		a.Slug,
		a.PrimaryCategoryID,
		docs.secondary,
		a.Published,
		a.Order,
		a.CoverImage,
		docs.links,
		docs.images,
		docs.tags,
		a.Featured,
		nullTime(a),
		docs.metadata,
		docs.care,
		docs.growing,
		docs.pests,
		docs.traits,
		a.UpdatedAt,
	)
	out, err := scanArticle(row)
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// Delete removes an article by ID.
func (r *ArticlePostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementViews adds one to the view counter in a single statement.
func (r *ArticlePostgres) IncrementViews(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE articles SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ModifyLikes runs fn against the article's like state under a row lock.
func (r *ArticlePostgres) ModifyLikes(ctx context.Context, id string, fn func(st *like.State) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin like tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var ledger, attempts, daily []byte
	const qLock = `SELECT likes, like_attempts, like_daily_adds FROM articles WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, qLock, id).Scan(&ledger, &attempts, &daily); err != nil {
		return err
	}

	var st like.State
	if err := decodeJSON(ledger, &st.Ledger); err != nil {
		return fmt.Errorf("decode likes: %w", err)
	}
	if err := decodeJSON(attempts, &st.Attempts); err != nil {
		return fmt.Errorf("decode like attempts: %w", err)
	}
	if err := decodeJSON(daily, &st.Daily); err != nil {
		return fmt.Errorf("decode daily likes: %w", err)
	}

	if err := fn(&st); err != nil {
		return err
	}

	ledgerJSON, err := jsonArray(st.Ledger)
	if err != nil {
		return fmt.Errorf("encode likes: %w", err)
	}
	attemptsJSON, err := json.Marshal(st.Attempts)
	if err != nil {
		return fmt.Errorf("encode like attempts: %w", err)
	}
	dailyJSON, err := json.Marshal(st.Daily)
	if err != nil {
		return fmt.Errorf("encode daily likes: %w", err)
	}

	const qSave = `UPDATE articles SET likes = $2, like_attempts = $3, like_daily_adds = $4, like_count = $5 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, qSave, id, ledgerJSON, string(attemptsJSON), string(dailyJSON), st.Ledger.Len()); err != nil {
		return fmt.Errorf("save likes: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit like tx: %w", err)
	}
	return nil
}
