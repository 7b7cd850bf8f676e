package report

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/oaklandbooks/bookstore-api/internal/redisx"
)

// Service fronts the report queries. Only the dashboard aggregate is
// cached: it is the hot path (hit on every admin page load) and staleness
// of a few minutes is acceptable there.
type Service struct {
	repo  Repository
	cache *redis.Client
}

func NewService(repo Repository, cache *redis.Client) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) PreviousMonthSales(ctx context.Context) (*MonthlySales, error) {
	return s.repo.PreviousMonthSales(ctx)
}

func (s *Service) SalesByDate(ctx context.Context, date string) (*DateSales, error) {
	return s.repo.SalesByDate(ctx, date)
}

func (s *Service) TopCustomers(ctx context.Context) ([]TopCustomer, error) {
	return s.repo.TopCustomers(ctx)
}

func (s *Service) TopBooks(ctx context.Context) ([]TopBook, error) {
	return s.repo.TopBooks(ctx)
}

func (s *Service) BookReorderCount(ctx context.Context, isbn string) (*ReorderCount, error) {
	return s.repo.BookReorderCount(ctx, isbn)
}

func (s *Service) DailySales(ctx context.Context, startDate, endDate string) ([]DailySales, error) {
	return s.repo.DailySales(ctx, startDate, endDate)
}

func (s *Service) InventoryStatus(ctx context.Context) ([]InventoryItem, error) {
	return s.repo.InventoryStatus(ctx)
}

func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, redisx.KeyDashboardStats).Bytes()
		if err == nil {
			var cached DashboardStats
			if jerr := json.Unmarshal(raw, &cached); jerr == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			log.Printf("[report] cache get: %v", err)
		}
	}

	stats, err := s.repo.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, redisx.KeyDashboardStats, raw, redisx.TTLDashboard).Err(); err != nil {
				log.Printf("[report] cache set: %v", err)
			}
		}
	}
	return stats, nil
}
