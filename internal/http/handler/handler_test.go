package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gardencms/internal/auth"
	"gardencms/internal/http/middleware"
	"gardencms/internal/like"
	"gardencms/internal/logger"
	"gardencms/internal/model"
	"gardencms/internal/repository"
	"gardencms/internal/service"
	serviceMocks "gardencms/internal/service/mocks"
)

const browserUA = "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"

type testEnvelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      *string         `json:"error"`
	Code       string          `json:"code"`
	Path       string          `json:"path"`
	RequestID  string          `json:"requestId"`
	Timestamp  string          `json:"timestamp"`
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.Nop())})
	app.Use(middleware.RequestID())
	return app
}

func decode(t *testing.T, resp *http.Response) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func jsonRequest(method, target string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := newTestApp()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		env := decode(t, resp)
		assert.True(t, env.Success)
		assert.JSONEq(t, `{"status":"healthy","database":"up"}`, string(env.Data))
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		env := decode(t, resp)
		assert.False(t, env.Success)
		assert.Equal(t, "SERVICE_UNAVAILABLE", env.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := newTestApp()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env := decode(t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusOK, env.StatusCode)
	assert.Equal(t, "alive", env.Message)
	assert.NotEmpty(t, env.RequestID)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{"not found", fmt.Errorf("%w: article x", service.ErrNotFound), 404, "NOT_FOUND", "not found: article x"},
		{"invalid input", fmt.Errorf("%w: title is required", service.ErrInvalidInput), 400, "INVALID_INPUT", "invalid input: title is required"},
		{"conflict", fmt.Errorf("%w: slug taken", service.ErrConflict), 409, "CONFLICT", "conflict: slug taken"},
		{"rate limited", service.ErrRateLimited, 429, "RATE_LIMITED", "rate limited"},
		{"bot", service.ErrBotDetected, 400, "BOT_DETECTED", "bot detected"},
		{"unauthorized", service.ErrUnauthorized, 401, "UNAUTHORIZED", "unauthorized"},
		{"forbidden", service.ErrForbidden, 403, "FORBIDDEN", "forbidden"},
		{"fiber 401", fiber.NewError(fiber.StatusUnauthorized, "missing bearer token"), 401, "UNAUTHORIZED", "missing bearer token"},
		{"fiber 429", fiber.NewError(fiber.StatusTooManyRequests, "slow down"), 429, "RATE_LIMITED", "slow down"},
		{"fiber 413", fiber.ErrRequestEntityTooLarge, 413, "INVALID_INPUT", fiber.ErrRequestEntityTooLarge.Message},
		{"unclassified hides detail", errors.New("pq: connection refused"), 500, "INTERNAL", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/boom", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom?x=1", nil))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			env := decode(t, resp)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantStatus, env.StatusCode)
			assert.Equal(t, tt.wantCode, env.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantError, *env.Error)
			assert.Equal(t, "null", string(env.Data))
			assert.Equal(t, "/boom?x=1", env.Path)
			assert.NotEmpty(t, env.RequestID)
			_, perr := time.Parse(time.RFC3339, env.Timestamp)
			assert.NoError(t, perr)
		})
	}
}

func TestListArticles(t *testing.T) {
	categoryID := uuid.NewString()

	t.Run("maps query parameters", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockArticleService)
		app := newTestApp()
		app.Get("/articles", ListArticles(mockSvc))

		mockSvc.On("List", mock.Anything, mock.MatchedBy(func(p service.ArticleListParams) bool {
			f := p.Filter
			return p.Page == 2 && p.Limit == 5 && !p.IsAdmin &&
				f.Edible != nil && *f.Edible &&
				f.ToxicToAnimals != nil && !*f.ToxicToAnimals &&
				f.PrimaryCategoryID == categoryID &&
				assert.ObjectsAreEqual([]string{"herbs", "shade"}, f.Tags) &&
				f.SoilPHMin != nil && *f.SoilPHMin == 6.5 &&
				f.BloomSeason == "spring" &&
				f.Search == "basil" &&
				p.Sort == repository.SortPopularity
		})).Return(&service.ArticleListResult{Items: []model.Article{{ID: "a1"}}, Total: 6, Page: 2, Limit: 5, TotalPages: 2}, nil).Once()

		target := "/articles?page=2&limit=5&edible=true&toxicToAnimals=false&primaryCategory=" + categoryID +
			"&tags=herbs,%20shade,&phMin=6.5&bloomSeason=spring&search=basil&ordering=popularity"
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		env := decode(t, resp)
		assert.True(t, env.Success)
		assert.Nil(t, env.Error)

		var result service.ArticleListResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 2, result.TotalPages)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown ordering falls back to newest", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockArticleService)
		app := newTestApp()
		app.Get("/articles", ListArticles(mockSvc))

		mockSvc.On("List", mock.Anything, mock.MatchedBy(func(p service.ArticleListParams) bool {
			return p.Sort == repository.SortDateDesc && p.Page == 1 && p.Limit == service.DefaultPageLimit
		})).Return(&service.ArticleListResult{}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/articles?ordering=random", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid boolean", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockArticleService)
		app := newTestApp()
		app.Get("/articles", ListArticles(mockSvc))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/articles?edible=maybe", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", decode(t, resp).Code)
		mockSvc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("invalid limit", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockArticleService)
		app := newTestApp()
		app.Get("/articles", ListArticles(mockSvc))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/articles?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockArticleService)
		app := newTestApp()
		app.Get("/articles", ListArticles(mockSvc))
		mockSvc.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/articles", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		env := decode(t, resp)
		assert.Equal(t, "internal server error", *env.Error)
	})
}

func TestGetArticleBySlug(t *testing.T) {
	mockSvc := new(serviceMocks.MockArticleService)
	app := newTestApp()
	app.Get("/articles/slug/:slug", GetArticleBySlug(mockSvc))

	t.Run("counts a view when asked", func(t *testing.T) {
		mockSvc.On("GetBySlug", mock.Anything, "basil", true, false).Return(&model.Article{ID: "a1", Slug: "basil"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/articles/slug/basil?incrementViews=true", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("draft hidden", func(t *testing.T) {
		mockSvc.On("GetBySlug", mock.Anything, "draft", false, false).
			Return(nil, fmt.Errorf("%w: article with slug draft", service.ErrNotFound)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/articles/slug/draft", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decode(t, resp).Code)
	})
}

func TestCuratedArticles(t *testing.T) {
	mockSvc := new(serviceMocks.MockArticleService)
	app := newTestApp()
	app.Get("/articles/pet-safe", PetSafeArticles(mockSvc))
	app.Get("/articles/blooming/:season", BloomingArticles(mockSvc))

	mockSvc.On("PetSafe", mock.Anything).Return(nil, nil).Once()
	mockSvc.On("Blooming", mock.Anything, "autumn").Return([]model.Article{{ID: "a1"}}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/articles/pet-safe", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", string(decode(t, resp).Data))

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/articles/blooming/autumn", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestCreateArticle(t *testing.T) {
	mockSvc := new(serviceMocks.MockArticleService)
	app := newTestApp()
	app.Post("/articles", CreateArticle(mockSvc))

	t.Run("created", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateArticleInput) bool {
			return in.Title == "Growing Basil" && in.Published
		})).Return(&model.Article{ID: "a1", Slug: "growing-basil"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/articles", map[string]any{
			"title": "Growing Basil", "description": "d", "primaryCategoryId": uuid.NewString(), "published": true,
		}))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		env := decode(t, resp)
		assert.Equal(t, http.StatusCreated, env.StatusCode)
		assert.Equal(t, "article created", env.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader("{"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", decode(t, resp).Code)
	})

	t.Run("slug conflict", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: slug 'basil' is already in use", service.ErrConflict)).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/articles", map[string]any{"title": "Basil"}))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestUpdateArticle_PartialBody(t *testing.T) {
	mockSvc := new(serviceMocks.MockArticleService)
	app := newTestApp()
	app.Patch("/articles/:id", UpdateArticle(mockSvc))
	id := uuid.NewString()

	mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(in service.UpdateArticleInput) bool {
		return in.Title != nil && *in.Title == "New" && in.Tags == nil && in.Published == nil
	})).Return(&model.Article{ID: id}, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodPatch, "/articles/"+id, map[string]any{"title": "New"}))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestDeleteArticle(t *testing.T) {
	mockSvc := new(serviceMocks.MockArticleService)
	app := newTestApp()
	app.Delete("/articles/:id", DeleteArticle(mockSvc))
	id := uuid.NewString()

	mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()
	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/articles/"+id, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mockSvc.On("Delete", mock.Anything, id).Return(fmt.Errorf("%w: article %s", service.ErrNotFound, id)).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/articles/"+id, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestToggleLike(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name       string
		result     like.Result
		svcErr     error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "liked", result: like.Result{Liked: true, Count: 3}, wantStatus: 200, wantMsg: "article liked"},
		{name: "unliked", result: like.Result{Liked: false, Count: 2}, wantStatus: 200, wantMsg: "article unliked"},
		{name: "daily cap", svcErr: fmt.Errorf("%w: daily like limit reached", service.ErrRateLimited), wantStatus: 429, wantCode: "RATE_LIMITED"},
		{name: "bot", svcErr: fmt.Errorf("%w: automated client", service.ErrBotDetected), wantStatus: 400, wantCode: "BOT_DETECTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockArticleService)
			app := newTestApp()
			app.Post("/articles/:id/like", ToggleLike(mockSvc))

			mockSvc.On("ToggleLike", mock.Anything, id, like.Request{
				Identifier:  "visitor-1",
				Fingerprint: "fp",
				UserAgent:   browserUA,
			}).Return(tt.result, tt.svcErr).Once()

			req := jsonRequest(http.MethodPost, "/articles/"+id+"/like", LikeRequest{Identifier: "visitor-1", Fingerprint: "fp"})
			req.Header.Set(fiber.HeaderUserAgent, browserUA)
			resp, _ := app.Test(req)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			env := decode(t, resp)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, env.Code)
			} else {
				assert.Equal(t, tt.wantMsg, env.Message)
				var got like.Result
				require.NoError(t, json.Unmarshal(env.Data, &got))
				assert.Equal(t, tt.result, got)
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func multipartImage(t *testing.T, filename, contentType string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG fake image"))

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadArticleImage(t *testing.T) {
	id := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockArticleService)
		app := newTestApp()
		app.Post("/articles/:id/images", UploadArticleImage(mockSvc))

		mockSvc.On("AddImage", mock.Anything, id, mock.MatchedBy(func(up service.ImageUpload) bool {
			data, _ := io.ReadAll(up.Reader)
			return up.Filename == "rose.png" && up.ContentType == "image/png" &&
				up.AltText == "A red rose" && up.Primary && len(data) > 0
		})).Return(&model.Article{ID: id, Images: []model.Image{{URL: "http://cdn/rose.png"}}}, nil).Once()

		body, ct := multipartImage(t, "rose.png", "image/png", map[string]string{"altText": "A red rose", "primary": "true"})
		req := httptest.NewRequest(http.MethodPost, "/articles/"+id+"/images", body)
		req.Header.Set(fiber.HeaderContentType, ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockArticleService)
		app := newTestApp()
		app.Post("/articles/:id/images", UploadArticleImage(mockSvc))

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/articles/"+id+"/images", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		env := decode(t, resp)
		assert.Equal(t, "file is required", *env.Error)
	})

	t.Run("storage disabled", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockArticleService)
		app := newTestApp()
		app.Post("/articles/:id/images", UploadArticleImage(mockSvc))
		mockSvc.On("AddImage", mock.Anything, id, mock.Anything).Return(nil, service.ErrStorageDisabled).Once()

		body, ct := multipartImage(t, "rose.png", "image/png", nil)
		req := httptest.NewRequest(http.MethodPost, "/articles/"+id+"/images", body)
		req.Header.Set(fiber.HeaderContentType, ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", decode(t, resp).Code)
	})
}

func TestCategoryHandlers(t *testing.T) {
	id := uuid.NewString()

	t.Run("list with filters", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCategoryService)
		app := newTestApp()
		app.Get("/categories", ListCategories(mockSvc))

		mockSvc.On("List", mock.Anything, mock.MatchedBy(func(p service.CategoryListParams) bool {
			return p.Filter.Active != nil && *p.Filter.Active && p.Filter.Search == "herb" && p.Page == 1
		})).Return(&service.CategoryListResult{Items: []model.Category{{ID: id}}, Total: 1}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/categories?active=true&search=herb", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("create conflict", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCategoryService)
		app := newTestApp()
		app.Post("/categories", CreateCategory(mockSvc))
		mockSvc.On("Create", mock.Anything, service.CreateCategoryInput{Name: "Herbs"}).
			Return(nil, fmt.Errorf("%w: category name 'Herbs' is already in use", service.ErrConflict)).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/categories", map[string]any{"name": "Herbs"}))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		env := decode(t, resp)
		assert.Equal(t, "conflict: category name 'Herbs' is already in use", *env.Error)
	})

	t.Run("delete still referenced", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCategoryService)
		app := newTestApp()
		app.Delete("/categories/:id", DeleteCategory(mockSvc))
		mockSvc.On("Delete", mock.Anything, id).Return(fmt.Errorf("%w: category is still used by articles", service.ErrConflict)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/categories/"+id, nil))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("get by slug", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockCategoryService)
		app := newTestApp()
		app.Get("/categories/slug/:slug", GetCategoryBySlug(mockSvc))
		mockSvc.On("GetBySlug", mock.Anything, "herbs").Return(&model.Category{ID: id, Slug: "herbs"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/categories/slug/herbs", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestAuthHandlers(t *testing.T) {
	t.Run("login", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAuthService)
		app := newTestApp()
		app.Post("/auth/login", Login(mockSvc))

		in := service.LoginInput{Email: "g@garden.test", Password: "secret"}
		mockSvc.On("Login", mock.Anything, in).Return(&service.LoginResult{Token: "jwt"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", in))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res service.LoginResult
		require.NoError(t, json.Unmarshal(decode(t, resp).Data, &res))
		assert.Equal(t, "jwt", res.Token)
	})

	t.Run("bad credentials", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAuthService)
		app := newTestApp()
		app.Post("/auth/login", Login(mockSvc))
		mockSvc.On("Login", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: invalid credentials", service.ErrUnauthorized)).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", map[string]string{"email": "x@y.z", "password": "p"}))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decode(t, resp).Code)
	})

	t.Run("profile without token", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAuthService)
		app := newTestApp()
		app.Get("/auth/profile", Profile(mockSvc))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/auth/profile", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "Profile", mock.Anything, mock.Anything)
	})

	t.Run("profile", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAuthService)
		app := newTestApp()
		app.Get("/auth/profile", Profile(mockSvc))
		mockSvc.On("Profile", mock.Anything, "abc.def.ghi").Return(&model.User{ID: "u1", Email: "g@garden.test"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer abc.def.ghi")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	tokens := auth.NewJWTManager("routing-secret", time.Hour, "gardencms")
	adminToken, _, err := tokens.GenerateToken(&model.User{ID: "admin", Role: model.RoleAdmin})
	require.NoError(t, err)
	standardToken, _, err := tokens.GenerateToken(&model.User{ID: "reader", Role: model.RoleStandard})
	require.NoError(t, err)

	articles := new(serviceMocks.MockArticleService)
	categories := new(serviceMocks.MockCategoryService)
	app := newTestApp()
	RegisterRoutes(app, Services{
		Articles:   articles,
		Categories: categories,
		Auth:       new(serviceMocks.MockAuthService),
		Tokens:     tokens,
	})

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decode(t, resp).Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/healthz", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decode(t, resp).Code)
	})

	t.Run("writes need a token", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/categories", map[string]string{"name": "Herbs"}))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decode(t, resp).Code)
	})

	t.Run("writes need the admin role", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/categories", map[string]string{"name": "Herbs"})
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+standardToken)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decode(t, resp).Code)
		categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("admin token reaches the handler", func(t *testing.T) {
		categories.On("Create", mock.Anything, service.CreateCategoryInput{Name: "Herbs"}).
			Return(&model.Category{ID: "c1", Name: "Herbs"}, nil).Once()

		req := jsonRequest(http.MethodPost, "/categories", map[string]string{"name": "Herbs"})
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("admin token unlocks drafts on public reads", func(t *testing.T) {
		articles.On("Get", mock.Anything, "a1", true).Return(&model.Article{ID: "a1"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/articles/a1", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		articles.AssertExpectations(t)
	})

	t.Run("static segments win over ids", func(t *testing.T) {
		articles.On("Featured", mock.Anything).Return([]model.Article{}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/articles/featured", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		articles.AssertExpectations(t)
	})
}
