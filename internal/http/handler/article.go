package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"gardencms/internal/http/middleware"
	"gardencms/internal/like"
	"gardencms/internal/model"
	"gardencms/internal/service"
)

// LikeRequest is the body of a like toggle. The user agent is read from the
// User-Agent header.
type LikeRequest struct {
	Identifier  string `json:"identifier"`
	Fingerprint string `json:"fingerprint"`
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

// ListArticles godoc
// @Summary      List articles
// @Description  Paginated, filtered listing. Drafts are visible to admins only.
// @Tags         articles
// @Produce      json
// @Param        page                 query  int     false  "Page (from 1)"
// @Param        limit                query  int     false  "Page size (max 100)"
// @Param        published            query  bool    false  "Admin only"
// @Param        featured             query  bool    false  "Featured flag"
// @Param        primaryCategory      query  string  false  "Primary category id"
// @Param        secondaryCategories  query  string  false  "Comma separated category ids"
// @Param        tags                 query  string  false  "Comma separated tags"
// @Param        search               query  string  false  "Title, description or tag"
// @Param        ordering             query  string  false  "title_asc, title_desc, date_asc, date_desc, popularity, views"
// @Param        edible               query  bool    false  "Edible plants"
// @Param        invasive             query  bool    false  "Invasive plants"
// @Param        bloomSeason          query  string  false  "Bloom season substring"
// @Param        toxicToHumans        query  bool    false  "Toxic to humans"
// @Param        toxicToAnimals       query  bool    false  "Toxic to animals"
// @Param        phMin                query  number  false  "Minimum soil pH"
// @Param        phMax                query  number  false  "Maximum soil pH"
// @Success      200  {object}  Response{data=service.ArticleListResult}
// @Failure      400  {object}  Response
// @Router       /articles [get]
func ListArticles(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := articleListParams(c)
		if err != nil {
			return err
		}
		p.IsAdmin = middleware.IsAdmin(c)

		res, err := svc.List(c.UserContext(), p)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "articles retrieved", res)
	}
}

// GetArticle godoc
// @Summary  Get an article by id
// @Tags     articles
// @Produce  json
// @Param    id   path  string  true  "Article id"
// @Success  200  {object}  Response{data=model.Article}
// @Failure  400  {object}  Response
// @Failure  404  {object}  Response
// @Router   /articles/{id} [get]
func GetArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := svc.Get(c.UserContext(), c.Params("id"), middleware.IsAdmin(c))
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "article retrieved", a)
	}
}

// GetArticleBySlug godoc
// @Summary  Get an article by slug
// @Tags     articles
// @Produce  json
// @Param    slug            path   string  true   "Article slug"
// @Param    incrementViews  query  bool    false  "Count this read as a view"
// @Success  200  {object}  Response{data=model.Article}
// @Failure  404  {object}  Response
// @Router   /articles/slug/{slug} [get]
func GetArticleBySlug(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inc, err := queryBool(c, "incrementViews")
		if err != nil {
			return err
		}
		a, err := svc.GetBySlug(c.UserContext(), c.Params("slug"), inc != nil && *inc, middleware.IsAdmin(c))
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "article retrieved", a)
	}
}

// curated serves one of the fixed-size published lists.
func curated(message string, fetch func(c *fiber.Ctx) ([]model.Article, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := fetch(c)
		if err != nil {
			return err
		}
		if items == nil {
			items = []model.Article{}
		}
		return respond(c, fiber.StatusOK, message, items)
	}
}

// FeaturedArticles godoc
// @Summary  Featured articles
// @Tags     articles
// @Produce  json
// @Success  200  {object}  Response{data=[]model.Article}
// @Router   /articles/featured [get]
func FeaturedArticles(svc service.ArticleService) fiber.Handler {
	return curated("featured articles retrieved", func(c *fiber.Ctx) ([]model.Article, error) {
		return svc.Featured(c.UserContext())
	})
}

// PopularArticles godoc
// @Summary  Most liked articles
// @Tags     articles
// @Produce  json
// @Success  200  {object}  Response{data=[]model.Article}
// @Router   /articles/popular [get]
func PopularArticles(svc service.ArticleService) fiber.Handler {
	return curated("popular articles retrieved", func(c *fiber.Ctx) ([]model.Article, error) {
		return svc.Popular(c.UserContext())
	})
}

// RelatedArticles godoc
// @Summary  Articles related to another one
// @Tags     articles
// @Produce  json
// @Param    id   path  string  true  "Article id"
// @Success  200  {object}  Response{data=[]model.Article}
// @Failure  404  {object}  Response
// @Router   /articles/related/{id} [get]
func RelatedArticles(svc service.ArticleService) fiber.Handler {
	return curated("related articles retrieved", func(c *fiber.Ctx) ([]model.Article, error) {
		return svc.Related(c.UserContext(), c.Params("id"))
	})
}

// EdibleArticles godoc
// @Summary  Edible plants
// @Tags     articles
// @Produce  json
// @Success  200  {object}  Response{data=[]model.Article}
// @Router   /articles/edible [get]
func EdibleArticles(svc service.ArticleService) fiber.Handler {
	return curated("edible plants retrieved", func(c *fiber.Ctx) ([]model.Article, error) {
		return svc.Edible(c.UserContext())
	})
}

// BloomingArticles godoc
// @Summary  Plants blooming in a season
// @Tags     articles
// @Produce  json
// @Param    season  path  string  true  "Season, e.g. spring"
// @Success  200  {object}  Response{data=[]model.Article}
// @Router   /articles/blooming/{season} [get]
func BloomingArticles(svc service.ArticleService) fiber.Handler {
	return curated("blooming plants retrieved", func(c *fiber.Ctx) ([]model.Article, error) {
		return svc.Blooming(c.UserContext(), c.Params("season"))
	})
}

// PetSafeArticles godoc
// @Summary  Plants safe for pets
// @Tags     articles
// @Produce  json
// @Success  200  {object}  Response{data=[]model.Article}
// @Router   /articles/pet-safe [get]
func PetSafeArticles(svc service.ArticleService) fiber.Handler {
	return curated("pet-safe plants retrieved", func(c *fiber.Ctx) ([]model.Article, error) {
		return svc.PetSafe(c.UserContext())
	})
}

// CreateArticle godoc
// @Summary   Create an article
// @Tags      articles
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     body  body  service.CreateArticleInput  true  "Article"
// @Success   201  {object}  Response{data=model.Article}
// @Failure   400  {object}  Response
// @Failure   401  {object}  Response
// @Failure   403  {object}  Response
// @Failure   409  {object}  Response
// @Router    /articles [post]
func CreateArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateArticleInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		a, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusCreated, "article created", a)
	}
}

// UpdateArticle godoc
// @Summary   Partially update an article
// @Tags      articles
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     id    path  string                      true  "Article id"
// @Param     body  body  service.UpdateArticleInput  true  "Changed fields"
// @Success   200  {object}  Response{data=model.Article}
// @Failure   400  {object}  Response
// @Failure   404  {object}  Response
// @Failure   409  {object}  Response
// @Router    /articles/{id} [patch]
func UpdateArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.UpdateArticleInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		a, err := svc.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "article updated", a)
	}
}

// DeleteArticle godoc
// @Summary   Delete an article
// @Tags      articles
// @Security  BearerAuth
// @Produce   json
// @Param     id   path  string  true  "Article id"
// @Success   200  {object}  Response
// @Failure   404  {object}  Response
// @Router    /articles/{id} [delete]
func DeleteArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "article deleted", nil)
	}
}

// ToggleLike godoc
// @Summary  Like or unlike an article anonymously
// @Tags     articles
// @Accept   json
// @Produce  json
// @Param    id    path  string       true  "Article id"
// @Param    body  body  LikeRequest  true  "Caller identity"
// @Success  200  {object}  Response{data=like.Result}
// @Failure  400  {object}  Response
// @Failure  404  {object}  Response
// @Failure  429  {object}  Response
// @Router   /articles/{id}/like [post]
func ToggleLike(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LikeRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}
		res, err := svc.ToggleLike(c.UserContext(), c.Params("id"), like.Request{
			Identifier:  body.Identifier,
			Fingerprint: body.Fingerprint,
			UserAgent:   c.Get(fiber.HeaderUserAgent),
		})
		if err != nil {
			return err
		}
		msg := "article unliked"
		if res.Liked {
			msg = "article liked"
		}
		return respond(c, fiber.StatusOK, msg, res)
	}
}

// UploadArticleImage godoc
// @Summary   Upload an image into an article's gallery
// @Tags      articles
// @Security  BearerAuth
// @Accept    multipart/form-data
// @Produce   json
// @Param     id       path      string  true   "Article id"
// @Param     file     formData  file    true   "Image file"
// @Param     altText  formData  string  false  "Alternative text"
// @Param     primary  formData  bool    false  "Make this the primary image"
// @Success   201  {object}  Response{data=model.Article}
// @Failure   400  {object}  Response
// @Failure   404  {object}  Response
// @Router    /articles/{id}/images [post]
func UploadArticleImage(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file is required")
		}

		primary := false
		if raw := c.FormValue("primary"); raw != "" {
			if primary, err = strconv.ParseBool(raw); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid primary: expected true or false")
			}
		}

		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "cannot open uploaded file")
		}
		defer f.Close()

		a, err := svc.AddImage(c.UserContext(), c.Params("id"), service.ImageUpload{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			AltText:     c.FormValue("altText"),
			Primary:     primary,
		})
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusCreated, "image uploaded", a)
	}
}
