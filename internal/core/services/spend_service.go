package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type spendService struct {
	ledger      ports.SpendLedger
	cache       ports.SpendCache
	memberships ports.MembershipService
	logger      *slog.Logger
}

// NewSpendService builds the spend gate. cache may be nil.
func NewSpendService(ledger ports.SpendLedger, cache ports.SpendCache, memberships ports.MembershipService, logger *slog.Logger) ports.SpendService {
	return &spendService{
		ledger:      ledger,
		cache:       cache,
		memberships: memberships,
		logger:      logger,
	}
}

func (s *spendService) CheckEligibility(ctx context.Context, userID, brandID uuid.UUID, threshold float64, windowMonths int) (*domain.SpendEligibility, error) {
	spent, err := s.cachedSpend(ctx, userID, brandID, windowMonths)
	if err != nil {
		return nil, err
	}
	e := domain.NewSpendEligibility(userID, brandID, spent, threshold, windowMonths)
	return &e, nil
}

// UnlockFromSpend re-reads the ledger, never the cache, and only creates a
// membership when the threshold is met.
func (s *spendService) UnlockFromSpend(ctx context.Context, userID uuid.UUID, sb *domain.Sketchbook) (bool, error) {
	if sb.MembershipRule.Kind != domain.RuleMinSpend {
		return false, fmt.Errorf("%w: sketchbook has no spend requirement", domain.ErrInvalidInput)
	}

	window := sb.MembershipRule.SpendWindow()
	spent, err := s.freshSpend(ctx, userID, sb.BrandID, window)
	if err != nil {
		return false, err
	}

	e := domain.NewSpendEligibility(userID, sb.BrandID, spent, sb.MembershipRule.MinSpend, window)
	if !e.Eligible {
		return false, nil
	}

	if _, err := s.memberships.Join(ctx, sb.ID, userID, domain.JoinSpend); err != nil {
		return false, fmt.Errorf("failed to unlock sketchbook: %w", err)
	}
	return true, nil
}

func (s *spendService) cachedSpend(ctx context.Context, userID, brandID uuid.UUID, windowMonths int) (float64, error) {
	if s.cache != nil {
		amount, ok, err := s.cache.GetSpend(ctx, userID, brandID, windowMonths)
		if err != nil {
			s.logger.Warn("spend cache read failed", "user_id", userID, "brand_id", brandID, "error", err)
		} else if ok {
			return amount, nil
		}
	}
	return s.freshSpend(ctx, userID, brandID, windowMonths)
}

func (s *spendService) freshSpend(ctx context.Context, userID, brandID uuid.UUID, windowMonths int) (float64, error) {
	since := time.Now().UTC().AddDate(0, -windowMonths, 0)
	spent, err := s.ledger.TotalSpend(ctx, userID, brandID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to read spend: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetSpend(ctx, userID, brandID, windowMonths, spent); err != nil {
			s.logger.Warn("spend cache write failed", "user_id", userID, "brand_id", brandID, "error", err)
		}
	}
	return spent, nil
}
