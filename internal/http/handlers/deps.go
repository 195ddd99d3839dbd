package handlers

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"rentalcar/internal/catalog"
	"rentalcar/internal/config"
	"rentalcar/internal/kv"
	"rentalcar/internal/rentalapi"
	"rentalcar/internal/repos"
	"rentalcar/internal/services"
)

// Upstream is the rental API client as the handlers use it, including the raw
// pass-through for the proxy routes.
type Upstream interface {
	services.Upstream
	Get(ctx context.Context, path, rawQuery string) ([]byte, error)
}

type Deps struct {
	CatalogHandler   *CatalogHandler
	CarHandler       *CarHandler
	FavoritesHandler *FavoritesHandler
	ProxyHandler     *ProxyHandler
	Registry         *catalog.Registry
}

func NewDeps(cfg config.Config, api Upstream, store kv.Store, db *sqlx.DB) *Deps {
	catalogSvc := services.NewCatalogService(api)
	favSvc := services.NewFavoritesService(store)
	bookingSvc := services.NewBookingService(store, repos.NewBookingRepo(db))
	bookingSvc.SingleDate = cfg.SingleBookingDate()

	ttl := cfg.CatalogSessionTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	registry := catalog.NewRegistry(ttl, func() *catalog.Store {
		return catalog.NewStore(api, catalog.WithMessages(rentalapi.UserMessage))
	})

	return &Deps{
		CatalogHandler:   &CatalogHandler{Catalog: catalogSvc, Favorites: favSvc, Stores: registry},
		CarHandler:       &CarHandler{Catalog: catalogSvc, Favorites: favSvc, Booking: bookingSvc, Now: time.Now},
		FavoritesHandler: &FavoritesHandler{Catalog: catalogSvc, Favorites: favSvc},
		ProxyHandler:     &ProxyHandler{API: api},
		Registry:         registry,
	}
}
