package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"gardencms/internal/repository"
	"gardencms/internal/service"
)

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return v, nil
}

// queryBool returns nil when key is absent.
func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key+": expected true or false")
	}
	return &v, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return &v, nil
}

// queryList splits a comma separated value, dropping blanks.
func queryList(c *fiber.Ctx, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pageParams(c *fiber.Ctx) (page, limit int, err error) {
	if page, err = queryInt(c, "page", 1); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(c, "limit", service.DefaultPageLimit); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// articleListParams reads the article listing query string.
func articleListParams(c *fiber.Ctx) (service.ArticleListParams, error) {
	var p service.ArticleListParams
	var err error
	if p.Page, p.Limit, err = pageParams(c); err != nil {
		return p, err
	}

	f := &p.Filter
	bools := []struct {
		key string
		dst **bool
	}{
		{"published", &f.Published},
		{"featured", &f.Featured},
		{"edible", &f.Edible},
		{"invasive", &f.Invasive},
		{"toxicToHumans", &f.ToxicToHumans},
		{"toxicToAnimals", &f.ToxicToAnimals},
	}
	for _, b := range bools {
		if *b.dst, err = queryBool(c, b.key); err != nil {
			return p, err
		}
	}
	if f.SoilPHMin, err = queryFloat(c, "phMin"); err != nil {
		return p, err
	}
	if f.SoilPHMax, err = queryFloat(c, "phMax"); err != nil {
		return p, err
	}

	f.PrimaryCategoryID = strings.TrimSpace(c.Query("primaryCategory"))
	f.SecondaryCategoryIDs = queryList(c, "secondaryCategories")
	f.Tags = queryList(c, "tags")
	f.Search = strings.TrimSpace(c.Query("search"))
	f.BloomSeason = strings.TrimSpace(c.Query("bloomSeason"))
	p.Sort = repository.ParseArticleSort(c.Query("ordering"))
	return p, nil
}

func categoryListParams(c *fiber.Ctx) (service.CategoryListParams, error) {
	var p service.CategoryListParams
	var err error
	if p.Page, p.Limit, err = pageParams(c); err != nil {
		return p, err
	}
	if p.Filter.Active, err = queryBool(c, "active"); err != nil {
		return p, err
	}
	p.Filter.Search = strings.TrimSpace(c.Query("search"))
	return p, nil
}
