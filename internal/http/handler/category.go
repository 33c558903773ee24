package handler

import (
	"github.com/gofiber/fiber/v2"

	"gardencms/internal/service"
)

// ListCategories godoc
// @Summary  List categories
// @Tags     categories
// @Produce  json
// @Param    page    query  int     false  "Page (from 1)"
// @Param    limit   query  int     false  "Page size (max 100)"
// @Param    active  query  bool    false  "Active flag"
// @Param    search  query  string  false  "Name, description or slug"
// @Success  200  {object}  Response{data=service.CategoryListResult}
// @Router   /categories [get]
func ListCategories(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := categoryListParams(c)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), p)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "categories retrieved", res)
	}
}

// GetCategory godoc
// @Summary  Get a category by id
// @Tags     categories
// @Produce  json
// @Param    id   path  string  true  "Category id"
// @Success  200  {object}  Response{data=model.Category}
// @Failure  404  {object}  Response
// @Router   /categories/{id} [get]
func GetCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "category retrieved", cat)
	}
}

// GetCategoryBySlug godoc
// @Summary  Get a category by slug
// @Tags     categories
// @Produce  json
// @Param    slug  path  string  true  "Category slug"
// @Success  200  {object}  Response{data=model.Category}
// @Failure  404  {object}  Response
// @Router   /categories/slug/{slug} [get]
func GetCategoryBySlug(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := svc.GetBySlug(c.UserContext(), c.Params("slug"))
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "category retrieved", cat)
	}
}

// CreateCategory godoc
// @Summary   Create a category
// @Tags      categories
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     body  body  service.CreateCategoryInput  true  "Category"
// @Success   201  {object}  Response{data=model.Category}
// @Failure   400  {object}  Response
// @Failure   409  {object}  Response
// @Router    /categories [post]
func CreateCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateCategoryInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		cat, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusCreated, "category created", cat)
	}
}

// UpdateCategory godoc
// @Summary   Partially update a category
// @Tags      categories
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     id    path  string                       true  "Category id"
// @Param     body  body  service.UpdateCategoryInput  true  "Changed fields"
// @Success   200  {object}  Response{data=model.Category}
// @Failure   404  {object}  Response
// @Failure   409  {object}  Response
// @Router    /categories/{id} [patch]
func UpdateCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.UpdateCategoryInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		cat, err := svc.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "category updated", cat)
	}
}

// DeleteCategory godoc
// @Summary   Delete a category
// @Tags      categories
// @Security  BearerAuth
// @Produce   json
// @Param     id   path  string  true  "Category id"
// @Success   200  {object}  Response
// @Failure   404  {object}  Response
// @Failure   409  {object}  Response  "Still used by articles"
// @Router    /categories/{id} [delete]
func DeleteCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "category deleted", nil)
	}
}
