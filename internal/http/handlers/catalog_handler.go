package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"rentalcar/internal/catalog"
	"rentalcar/internal/domain"
	"rentalcar/internal/log"
	"rentalcar/internal/services"
	"rentalcar/internal/validate"
)

type CatalogHandler struct {
	Catalog   *services.CatalogService
	Favorites *services.FavoritesService
	Stores    *catalog.Registry
}

func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	ensureSID(c)
	return render(c, "home", nil)
}

// List renders the session's catalog, seeding it from a server-side first page on
// the first visit. A failed seed fetch is shown as is, without a second attempt.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	sid := ensureSID(c)
	store := h.Stores.Get(sid)
	if !store.Mounted() {
		page, err := h.Catalog.FirstPage(c.UserContext())
		if err != nil {
			log.Warn(c, "catalog.seed.fail", err, nil)
			store.MountFailed(err)
		} else if err := store.Mount(c.UserContext(), &page); err != nil && !errors.Is(err, catalog.ErrSuperseded) {
			log.Warn(c, "catalog.mount.fail", err, nil)
		}
	}
	return h.page(c, sid, store.Snapshot(), fiber.StatusOK, "")
}

func (h *CatalogHandler) page(c *fiber.Ctx, sid string, st catalog.State, status int, formErr string) error {
	favs, err := h.Favorites.List(c.UserContext(), sid)
	if err != nil {
		log.Error(c, "favorites.list.fail", err, nil)
	}
	favSet := make(map[string]bool, len(favs))
	for _, id := range favs {
		favSet[id] = true
	}
	return render(c.Status(status), "catalog", fiber.Map{
		"State":   st,
		"Form":    filterForm(st.Filters),
		"Brands":  h.Catalog.Brands(c.UserContext()),
		"Prices":  services.PriceOptions(),
		"Favs":    favSet,
		"Empty":   len(st.Cars) == 0 && !st.Loading && st.Error == "",
		"AtEnd":   len(st.Cars) > 0 && !st.HasMore && st.Error == "",
		"FormErr": formErr,
	})
}

type filterValues struct {
	Brand, RentalPrice, MinMileage, MaxMileage string
}

func filterForm(f domain.FilterState) filterValues {
	v := filterValues{Brand: f.Brand, RentalPrice: f.RentalPrice}
	if f.MinMileage != nil {
		v.MinMileage = strconv.Itoa(*f.MinMileage)
	}
	if f.MaxMileage != nil {
		v.MaxMileage = strconv.Itoa(*f.MaxMileage)
	}
	return v
}

// Filters applies the filter form and starts over from page 1.
func (h *CatalogHandler) Filters(c *fiber.Ctx) error {
	sid := ensureSID(c)
	store := h.Stores.Get(sid)

	brand, ok := validate.Brand(c.FormValue("brand"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "brand"})
		return h.page(c, sid, store.Snapshot(), fiber.StatusBadRequest, "Choose a brand from the list")
	}
	price, ok := validate.Price(c.FormValue("rentalPrice"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "rentalPrice"})
		return h.page(c, sid, store.Snapshot(), fiber.StatusBadRequest, "Choose a price from the list")
	}
	minMileage, ok := validate.Mileage(c.FormValue("minMileage"))
	if !ok {
		return h.page(c, sid, store.Snapshot(), fiber.StatusBadRequest, "Mileage must be a non-negative number")
	}
	maxMileage, ok := validate.Mileage(c.FormValue("maxMileage"))
	if !ok {
		return h.page(c, sid, store.Snapshot(), fiber.StatusBadRequest, "Mileage must be a non-negative number")
	}

	patch := domain.FilterPatch{
		Brand:           &brand,
		RentalPrice:     &price,
		MinMileage:      minMileage,
		MaxMileage:      maxMileage,
		ClearMinMileage: minMileage == nil,
		ClearMaxMileage: maxMileage == nil,
	}
	if err := store.SetFilters(c.UserContext(), patch); err != nil && !errors.Is(err, catalog.ErrSuperseded) {
		log.Warn(c, "catalog.filters.fail", err, map[string]any{"brand": brand, "rentalPrice": price})
	}
	return c.Redirect("/catalog", fiber.StatusSeeOther)
}

func (h *CatalogHandler) More(c *fiber.Ctx) error {
	store := h.Stores.Get(ensureSID(c))
	if _, err := store.LoadMore(c.UserContext()); err != nil && !errors.Is(err, catalog.ErrSuperseded) {
		log.Warn(c, "catalog.more.fail", err, nil)
	}
	return c.Redirect("/catalog#more", fiber.StatusSeeOther)
}

// Retry re-runs the initial fetch after an error.
func (h *CatalogHandler) Retry(c *fiber.Ctx) error {
	store := h.Stores.Get(ensureSID(c))
	if err := store.FetchInitial(c.UserContext()); err != nil && !errors.Is(err, catalog.ErrSuperseded) {
		log.Warn(c, "catalog.retry.fail", err, nil)
	}
	return c.Redirect("/catalog", fiber.StatusSeeOther)
}
