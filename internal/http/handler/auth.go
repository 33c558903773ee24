package handler

import (
	"github.com/gofiber/fiber/v2"

	"gardencms/internal/http/middleware"
	"gardencms/internal/service"
)

// Login godoc
// @Summary  Sign in with email and password
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body  service.LoginInput  true  "Credentials"
// @Success  200  {object}  Response{data=service.LoginResult}
// @Failure  400  {object}  Response
// @Failure  401  {object}  Response
// @Router   /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.LoginInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		res, err := svc.Login(c.UserContext(), in)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "login successful", res)
	}
}

// Profile godoc
// @Summary   Current user
// @Tags      auth
// @Security  BearerAuth
// @Produce   json
// @Success   200  {object}  Response{data=model.User}
// @Failure   401  {object}  Response
// @Router    /auth/profile [get]
func Profile(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		u, err := svc.Profile(c.UserContext(), token)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, "profile retrieved", u)
	}
}
