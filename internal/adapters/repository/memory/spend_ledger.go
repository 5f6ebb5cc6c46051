package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type spendLedger struct {
	store *Store
}

// NewSpendLedger reads the purchases added with Store.RecordPurchase.
func NewSpendLedger(store *Store) ports.SpendLedger {
	return &spendLedger{store: store}
}

func (l *spendLedger) TotalSpend(ctx context.Context, userID, brandID uuid.UUID, since time.Time) (float64, error) {
	l.store.mu.RLock()
	defer l.store.mu.RUnlock()

	var total float64
	for _, p := range l.store.purchases {
		if p.buyerID == userID && p.sellerID == brandID && !p.completedAt.Before(since) {
			total += p.amount
		}
	}
	return total, nil
}
