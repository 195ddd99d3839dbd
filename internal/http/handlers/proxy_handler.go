package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"rentalcar/internal/log"
)

// ProxyHandler relays the rental API under the site's own origin. Upstream status
// codes are never passed on; every failure is a 500 with a fixed body.
type ProxyHandler struct {
	API Upstream
}

func (h *ProxyHandler) relay(c *fiber.Ctx, action, path string, onFail any) error {
	body, err := h.API.Get(c.UserContext(), path, string(c.Request().URI().QueryString()))
	if err != nil {
		log.Error(c, action, err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(onFail)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}

func (h *ProxyHandler) Brands(c *fiber.Ctx) error {
	return h.relay(c, "proxy.brands.fail", "/brands", []string{})
}

func (h *ProxyHandler) Cars(c *fiber.Ctx) error {
	return h.relay(c, "proxy.cars.fail", "/cars", fiber.Map{"message": "Failed to fetch cars"})
}

func (h *ProxyHandler) CarDetails(c *fiber.Ctx) error {
	return h.relay(c, "proxy.details.fail", "/cars/"+url.PathEscape(c.Params("id")), fiber.Map{"message": "Failed to fetch car details"})
}
