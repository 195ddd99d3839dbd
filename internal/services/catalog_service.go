package services

import (
	"context"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"rentalcar/internal/domain"
	applog "rentalcar/internal/log"
)

// Upstream is the rental API as the services use it.
type Upstream interface {
	FetchBrands(ctx context.Context) ([]string, error)
	FetchCars(ctx context.Context, f domain.FilterState, page int) (domain.CarsPage, error)
	FetchCarDetails(ctx context.Context, id string) (domain.Car, error)
}

type CatalogService struct {
	API Upstream
}

func NewCatalogService(api Upstream) *CatalogService {
	return &CatalogService{API: api}
}

// Brands returns the brand options sorted by name. Failures yield an empty list.
func (s *CatalogService) Brands(ctx context.Context) []string {
	brands, err := s.API.FetchBrands(ctx)
	if err != nil {
		applog.L().Warn("catalog.brands.fail", zap.Error(err))
		return []string{}
	}
	out := append([]string(nil), brands...)
	sort.Strings(out)
	return out
}

// FirstPage is page 1 with no filters, fetched for the server-rendered catalog.
func (s *CatalogService) FirstPage(ctx context.Context) (domain.CarsPage, error) {
	return s.API.FetchCars(ctx, domain.FilterState{}, 1)
}

func (s *CatalogService) GetCar(ctx context.Context, id string) (domain.Car, error) {
	return s.API.FetchCarDetails(ctx, id)
}

// GetCars loads the given cars in order, skipping ones that fail to load.
func (s *CatalogService) GetCars(ctx context.Context, ids []string) ([]domain.Car, int) {
	out := make([]domain.Car, 0, len(ids))
	failed := 0
	for _, id := range ids {
		c, err := s.API.FetchCarDetails(ctx, id)
		if err != nil {
			applog.L().Warn("catalog.car.fail", zap.String("car", id), zap.Error(err))
			failed++
			continue
		}
		out = append(out, c)
	}
	return out, failed
}

// PriceOptions are the hourly price ceilings offered by the filter form.
func PriceOptions() []string {
	out := make([]string, 0, 8)
	for p := 30; p <= 100; p += 10 {
		out = append(out, strconv.Itoa(p))
	}
	return out
}
