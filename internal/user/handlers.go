package user

import (
	"backend-travelcompanion/internal/auth"
	"backend-travelcompanion/internal/httpx"
	"backend-travelcompanion/internal/validation"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, tokens *auth.Service) {
	r.Post("/users/register", func(c *fiber.Ctx) error {
		var req Credentials
		if err := httpx.ParseBody(c, &req); err != nil {
			return err
		}
		if err := validation.Struct(req); err != nil {
			return httpx.Error(err)
		}
		created, err := svc.CreateUser(c.Context(), req.Username, req.Password)
		if err != nil {
			return httpx.Error(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Post("/users/login", func(c *fiber.Ctx) error {
		var req Credentials
		if err := httpx.ParseBody(c, &req); err != nil {
			return err
		}
		if err := validation.Struct(req); err != nil {
			return httpx.Error(err)
		}
		u, err := svc.Authenticate(c.Context(), req.Username, req.Password)
		if err != nil {
			return httpx.Error(err)
		}
		token, err := tokens.IssueToken(u.ID)
		if err != nil {
			return httpx.Error(err)
		}
		return c.JSON(LoginResponse{
			Token:     token.Token,
			TokenType: token.TokenType,
			ExpiresIn: token.ExpiresIn,
			User:      u,
		})
	})

	r.Get("/users/:id", func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		u, err := svc.GetUserByID(c.Context(), id)
		if err != nil {
			return httpx.Error(err)
		}
		return c.JSON(u)
	})
}
