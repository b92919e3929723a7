package stats

import (
	"context"

	"github.com/shopspring/decimal"
)

type StatsRepository interface {
	GetPaymentStats(ctx context.Context, merchantID int64) (paidTotal decimal.Decimal, paidCount, pendingCount int64, err error)
}

type Stats struct {
	PaidTotal    decimal.Decimal `json:"paid_total"`
	PaidCount    int64           `json:"paid_count"`
	PendingCount int64           `json:"pending_count"`
}

type Service struct {
	repo StatsRepository
}

func NewService(repo StatsRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) MerchantStats(ctx context.Context, merchantID int64) (*Stats, error) {
	paidTotal, paidCount, pendingCount, err := s.repo.GetPaymentStats(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return &Stats{
		PaidTotal:    paidTotal,
		PaidCount:    paidCount,
		PendingCount: pendingCount,
	}, nil
}
