package point

import (
	"backend-travelcompanion/internal/httpx"
	"backend-travelcompanion/internal/validation"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/tours/:tourId/points", func(c *fiber.Ctx) error {
		tourID, err := httpx.ParamID(c, "tourId")
		if err != nil {
			return err
		}
		points, err := svc.GetPointsByTourID(c.Context(), tourID)
		if err != nil {
			return httpx.Error(err)
		}
		return c.JSON(points)
	})

	r.Post("/tours/:tourId/points", authMiddleware, func(c *fiber.Ctx) error {
		tourID, err := httpx.ParamID(c, "tourId")
		if err != nil {
			return err
		}
		var req CreateInput
		if err := httpx.ParseBody(c, &req); err != nil {
			return err
		}
		req.TourID = tourID
		if err := validation.Struct(req); err != nil {
			return httpx.Error(err)
		}
		p, err := svc.CreatePoint(c.Context(), req)
		if err != nil {
			return httpx.Error(err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	r.Get("/points/:id", func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		p, err := svc.GetPointByID(c.Context(), id)
		if err != nil {
			return httpx.Error(err)
		}
		return c.JSON(p)
	})

	r.Put("/points/:id", authMiddleware, func(c *fiber.Ctx) error {
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
		p, err := svc.UpdatePoint(c.Context(), id, req)
		if err != nil {
			return httpx.Error(err)
		}
		return c.JSON(p)
	})

	r.Delete("/points/:id", authMiddleware, func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeletePoint(c.Context(), id); err != nil {
			return httpx.Error(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
