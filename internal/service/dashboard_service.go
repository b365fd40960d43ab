package service

import (
	"context"
	"time"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"

	"golang.org/x/sync/errgroup"
)

const maxMovementDays = 366

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]model.StockMovement, error)
	GetDashboardStats(ctx context.Context) (*model.DashboardStats, error)
}

type dashboardService struct {
	repo   repository.DashboardRepository
	txRepo repository.TransactionRepository
	now    func() time.Time
}

func NewDashboardService(repo repository.DashboardRepository, txRepo repository.TransactionRepository) DashboardService {
	return &dashboardService{repo: repo, txRepo: txRepo, now: time.Now}
}

// GetStockMovement returns one entry per day for the last `days` days, today
// included, with zero entries for quiet days.
func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]model.StockMovement, error) {
	if days <= 0 {
		days = 7
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -(days - 1))

	txns, err := s.txRepo.FindAll(ctx, model.TransactionFilter{From: &start})
	if err != nil {
		return nil, storeError(err, "failed to load stock movement")
	}

	series := make([]model.StockMovement, days)
	index := make(map[string]int, days)
	for i := range series {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		series[i].Date = date
		index[date] = i
	}
	for _, txn := range txns {
		i, ok := index[txn.CreatedAt.In(now.Location()).Format("2006-01-02")]
		if !ok {
			continue
		}
		if txn.Type == model.TxIn {
			series[i].Inbound += int64(txn.Quantity)
		} else {
			series[i].Outbound += int64(txn.Quantity)
		}
	}
	return series, nil
}

// GetDashboardStats computes the overview on every call; the queries run concurrently.
func (s *dashboardService) GetDashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var stats model.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalItems, err = s.repo.CountItems(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.LowStockItems, err = s.repo.CountLowStock(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.MonthlyInbound, err = s.txRepo.CountByTypeSince(gctx, model.TxIn, monthStart)
		return err
	})
	g.Go(func() (err error) {
		stats.MonthlyOutbound, err = s.txRepo.CountByTypeSince(gctx, model.TxOut, monthStart)
		return err
	})
	g.Go(func() (err error) {
		stats.MonthlyInboundQuantity, err = s.txRepo.SumQuantityByTypeSince(gctx, model.TxIn, monthStart)
		return err
	})
	g.Go(func() (err error) {
		stats.MonthlyOutboundQuantity, err = s.txRepo.SumQuantityByTypeSince(gctx, model.TxOut, monthStart)
		return err
	})
	g.Go(func() (err error) {
		stats.CategoryDistribution, err = s.repo.CategoryDistribution(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError(err, "failed to compute dashboard stats")
	}
	if stats.CategoryDistribution == nil {
		stats.CategoryDistribution = []model.CategoryDistribution{}
	}
	return &stats, nil
}
