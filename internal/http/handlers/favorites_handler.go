package handlers

import (
	"github.com/gofiber/fiber/v2"

	"rentalcar/internal/log"
	"rentalcar/internal/services"
	"rentalcar/internal/validate"
)

type FavoritesHandler struct {
	Catalog   *services.CatalogService
	Favorites *services.FavoritesService
}

func (h *FavoritesHandler) List(c *fiber.Ctx) error {
	sid := ensureSID(c)
	ids, err := h.Favorites.List(c.UserContext(), sid)
	if err != nil {
		log.Error(c, "favorites.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load favorites"})
	}
	cars, failed := h.Catalog.GetCars(c.UserContext(), ids)
	favSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		favSet[id] = true
	}
	return render(c, "favorites", fiber.Map{"Cars": cars, "Favs": favSet, "Failed": failed})
}

// Toggle adds or removes a car and sends the browser back where it came from.
func (h *FavoritesHandler) Toggle(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.FormValue("carId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "carId"})
		return c.Status(400).SendString("missing carId")
	}
	now, err := h.Favorites.Toggle(c.UserContext(), sid, id)
	if err != nil {
		log.Error(c, "favorites.toggle.fail", err, map[string]any{"car": id})
		return c.Status(500).SendString("Could not update favorites")
	}
	log.Audit(c, "favorites.toggle", map[string]any{"car": id, "favorite": now})
	return c.Redirect(back(c, "/favorites"), fiber.StatusSeeOther)
}
