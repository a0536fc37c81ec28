package service

import (
	"context"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/logger"
	"github.com/dom/coinshelf/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type PriceService struct {
	source    MetalPriceSource
	snapshots repository.PriceSnapshotRepository
}

func NewPriceService(source MetalPriceSource, snapshots repository.PriceSnapshotRepository) *PriceService {
	return &PriceService{source: source, snapshots: snapshots}
}

// GetMetalPrices returns a live or fallback quote. Live quotes are recorded;
// a failure to record is logged only.
func (s *PriceService) GetMetalPrices(ctx context.Context) domain.MetalPrices {
	prices := s.source.GetMetalPrices(ctx)
	if prices.Source != domain.PriceSourceFallback && s.snapshots != nil {
		if err := s.snapshots.Create(ctx, domain.NewPriceSnapshot(prices)); err != nil {
			logger.Log.Warn("failed to record price snapshot", zap.String("source", prices.Source), zap.Error(err))
		}
	}
	return prices
}

// History returns recorded quotes, newest first. limit is clamped to
// [1, MaxHistoryLimit]; zero or less selects the default.
func (s *PriceService) History(ctx context.Context, limit int) ([]*domain.PriceSnapshot, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.snapshots.ListRecent(ctx, limit)
}
