package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
)

// SpendLedger is the order ledger: verified spend of a buyer with a brand
// since a point in time.
type SpendLedger interface {
	TotalSpend(ctx context.Context, userID, brandID uuid.UUID, since time.Time) (float64, error)
}

type SpendCache interface {
	GetSpend(ctx context.Context, userID, brandID uuid.UUID, windowMonths int) (float64, bool, error)
	SetSpend(ctx context.Context, userID, brandID uuid.UUID, windowMonths int, amount float64) error
}

type SpendService interface {
	CheckEligibility(ctx context.Context, userID, brandID uuid.UUID, threshold float64, windowMonths int) (*domain.SpendEligibility, error)
	UnlockFromSpend(ctx context.Context, userID uuid.UUID, sb *domain.Sketchbook) (bool, error)
}
