package auth

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/verify", Middleware(svc, true), func(c *fiber.Ctx) error {
		userID, _ := UserID(c)
		return c.JSON(fiber.Map{"userId": userID})
	})
}
