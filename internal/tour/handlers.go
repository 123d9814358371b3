package tour

import (
	"backend-travelcompanion/internal/auth"
	"backend-travelcompanion/internal/httpx"
	"backend-travelcompanion/internal/validation"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/tours", func(c *fiber.Ctx) error {
		tours, err := svc.GetAllTours(c.Context())
		if err != nil {
			return httpx.Error(err)
		}
		return c.JSON(tours)
	})

	r.Post("/tours", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateInput
		if err := httpx.ParseBody(c, &req); err != nil {
			return err
		}
		if err := validation.Struct(req); err != nil {
			return httpx.Error(err)
		}
		// a signed-in caller owns the tour unless the body names a creator
		if uid, ok := auth.UserID(c); ok && req.CreatedByID == nil {
			req.CreatedByID = &uid
		}
		t, err := svc.CreateTour(c.Context(), req)
		if err != nil {
			return httpx.Error(err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	})

	r.Get("/tours/:id", func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		t, err := svc.GetTourByID(c.Context(), id)
		if err != nil {
			return httpx.Error(err)
		}
		return c.JSON(t)
	})

	r.Put("/tours/:id", authMiddleware, func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var req UpdateInput
		if err := httpx.ParseBody(c, &req); err != nil {
			return err
		}
		if err := validation.Struct(req); err != nil {
			return httpx.Error(err)
		}
		t, err := svc.UpdateTour(c.Context(), id, req)
		if err != nil {
			return httpx.Error(err)
		}
		return c.JSON(t)
	})

	r.Delete("/tours/:id", authMiddleware, func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeleteTour(c.Context(), id); err != nil {
			return httpx.Error(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/users/:id/tours", func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		tours, err := svc.GetToursByUser(c.Context(), id)
		if err != nil {
			return httpx.Error(err)
		}
		return c.JSON(tours)
	})
}
