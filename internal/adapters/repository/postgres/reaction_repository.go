package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type reactionRepository struct {
	db *sql.DB
}

func NewReactionRepository(db *sql.DB) ports.ReactionRepository {
	return &reactionRepository{
		db: db,
	}
}

func (r *reactionRepository) Toggle(ctx context.Context, reaction domain.Reaction) (*domain.ReactionResult, error) {
	result := &domain.ReactionResult{}
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		queryDelete := `
			DELETE FROM sketchbook_reactions
			WHERE post_id = $1 AND user_id = $2 AND type = $3
		`
		res, err := tx.ExecContext(ctx, queryDelete, reaction.PostID, reaction.UserID, reaction.Type)
		if err != nil {
			return fmt.Errorf("failed to remove reaction: %w", classify(err))
		}

		delta := -1
		if n, _ := res.RowsAffected(); n == 0 {
			queryInsert := `
				INSERT INTO sketchbook_reactions (post_id, user_id, type, created_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (post_id, user_id, type) DO NOTHING
			`
			res, err := tx.ExecContext(ctx, queryInsert, reaction.PostID, reaction.UserID, reaction.Type, reaction.CreatedAt)
			if err != nil {
				if pqCode(err) == codeForeignKeyViolation {
					return domain.ErrPostNotFound
				}
				return fmt.Errorf("failed to add reaction: %w", classify(err))
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return domain.ErrConflictRetryable
			}
			delta = 1
			result.Reacted = true
		}

		queryCount := `
			UPDATE sketchbook_posts SET reactions_count = GREATEST(reactions_count + $2, 0)
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING reactions_count
		`
		if err := tx.QueryRowContext(ctx, queryCount, reaction.PostID, delta).Scan(&result.NewCount); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrPostNotFound
			}
			return fmt.Errorf("failed to update reactions count: %w", classify(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *reactionRepository) UserReactions(ctx context.Context, userID uuid.UUID, reactionType domain.ReactionType, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool)
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT post_id FROM sketchbook_reactions
		WHERE user_id = $1 AND type = $2 AND post_id = ANY($3)
	`
	rows, err := r.db.QueryContext(ctx, query, userID, reactionType, pq.Array(uuidStrings(postIDs)))
	if err != nil {
		return nil, fmt.Errorf("failed to get reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		if err := rows.Scan(&postID); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		result[postID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reactions: %w", err)
	}
	return result, nil
}
