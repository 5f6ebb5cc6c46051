package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type spendLedger struct {
	db *sql.DB
}

// NewSpendLedger reads completed orders from the shared transactions table.
func NewSpendLedger(db *sql.DB) ports.SpendLedger {
	return &spendLedger{
		db: db,
	}
}

func (l *spendLedger) TotalSpend(ctx context.Context, userID, brandID uuid.UUID, since time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(price), 0)
		FROM transactions
		WHERE buyer_id = $1 AND seller_id = $2 AND status = 'completed' AND completed_at >= $3
	`
	var total float64
	if err := l.db.QueryRowContext(ctx, query, userID, brandID, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total, nil
}
