package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type reconcileRepository struct {
	db *sql.DB
}

func NewReconcileRepository(db *sql.DB) ports.ReconcileRepository {
	return &reconcileRepository{
		db: db,
	}
}

func (r *reconcileRepository) ListPostIDs(ctx context.Context) ([]uuid.UUID, error) {
	return r.listIDs(ctx, `SELECT id FROM sketchbook_posts WHERE deleted_at IS NULL`)
}

func (r *reconcileRepository) ListSketchbookIDs(ctx context.Context) ([]uuid.UUID, error) {
	return r.listIDs(ctx, `SELECT id FROM sketchbooks`)
}

func (r *reconcileRepository) listIDs(ctx context.Context, query string) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ids: %w", err)
	}
	return ids, nil
}

func (r *reconcileRepository) RecountPost(ctx context.Context, postID uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		queryVotes := `
			UPDATE sketchbook_poll_options o
			SET votes = (SELECT COUNT(*) FROM sketchbook_poll_votes v WHERE v.option_id = o.id)
			WHERE o.post_id = $1
		`
		if _, err := tx.ExecContext(ctx, queryVotes, postID); err != nil {
			return fmt.Errorf("failed to recount votes: %w", classify(err))
		}

		queryReactions := `
			UPDATE sketchbook_posts p
			SET reactions_count = (SELECT COUNT(*) FROM sketchbook_reactions r WHERE r.post_id = p.id)
			WHERE p.id = $1
		`
		if _, err := tx.ExecContext(ctx, queryReactions, postID); err != nil {
			return fmt.Errorf("failed to recount reactions: %w", classify(err))
		}
		return nil
	})
}

func (r *reconcileRepository) RecountSketchbook(ctx context.Context, sketchbookID uuid.UUID) error {
	query := `
		UPDATE sketchbooks s SET
			members_count = (SELECT COUNT(*) FROM sketchbook_memberships m WHERE m.sketchbook_id = s.id AND m.status = 'active'),
			posts_count = (SELECT COUNT(*) FROM sketchbook_posts p WHERE p.sketchbook_id = s.id AND p.deleted_at IS NULL)
		WHERE s.id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, sketchbookID); err != nil {
		return fmt.Errorf("failed to recount sketchbook: %w", classify(err))
	}
	return nil
}
