package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"gardencms/internal/http/middleware"
	"gardencms/internal/model"
	"gardencms/internal/service"
)

// Services bundles what the routes depend on.
type Services struct {
	DB         *sql.DB
	Articles   service.ArticleService
	Categories service.CategoryService
	Auth       service.AuthService
	Tokens     middleware.TokenValidator
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, s Services) {
	app.Get("/health", HealthCheck(s.DB))
	app.Get("/healthz", LivenessProbe())

	optional := middleware.Authenticate(s.Tokens, false)
	admin := []fiber.Handler{middleware.Authenticate(s.Tokens, true), middleware.RequireRole(model.RoleAdmin)}
	withAdmin := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, admin...), h)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", Login(s.Auth))
	authGroup.Get("/profile", Profile(s.Auth))

	articles := app.Group("/articles")
	articles.Get("/", optional, ListArticles(s.Articles))
	articles.Get("/featured", FeaturedArticles(s.Articles))
	articles.Get("/popular", PopularArticles(s.Articles))
	articles.Get("/related/:id", RelatedArticles(s.Articles))
	articles.Get("/edible", EdibleArticles(s.Articles))
	articles.Get("/blooming/:season", BloomingArticles(s.Articles))
	articles.Get("/pet-safe", PetSafeArticles(s.Articles))
	articles.Get("/slug/:slug", optional, GetArticleBySlug(s.Articles))
	articles.Get("/:id", optional, GetArticle(s.Articles))
	articles.Post("/:id/like", ToggleLike(s.Articles))
	articles.Post("/", withAdmin(CreateArticle(s.Articles))...)
	articles.Patch("/:id", withAdmin(UpdateArticle(s.Articles))...)
	articles.Delete("/:id", withAdmin(DeleteArticle(s.Articles))...)
	articles.Post("/:id/images", withAdmin(UploadArticleImage(s.Articles))...)

	categories := app.Group("/categories")
	categories.Get("/", ListCategories(s.Categories))
	categories.Get("/slug/:slug", GetCategoryBySlug(s.Categories))
	categories.Get("/:id", GetCategory(s.Categories))
	categories.Post("/", withAdmin(CreateCategory(s.Categories))...)
	categories.Patch("/:id", withAdmin(UpdateCategory(s.Categories))...)
	categories.Delete("/:id", withAdmin(DeleteCategory(s.Categories))...)
}
