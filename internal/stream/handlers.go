package stream

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(r fiber.Router, hub *Hub) {
	requireUpgrade := func(c *fiber.Ctx) error {
		tourID, err := strconv.ParseInt(c.Params("tourID"), 10, 64)
		if err != nil || tourID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid tour id")
		}
		c.Locals("tourID", tourID)
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}

	r.Get("/tours/:tourID", requireUpgrade, websocket.New(func(c *websocket.Conn) {
		// services publish under the canonical id, so "007" joins "7"
		client := hub.Register(TourKey(c.Locals("tourID").(int64)))
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
		<-done
	}))
}
