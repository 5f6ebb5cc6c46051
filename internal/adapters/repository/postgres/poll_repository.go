package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

// CastVote locks only the voter's own vote row. Option counters move with
// atomic increments, touched in id order so two voters switching in opposite
// directions cannot deadlock.
func (r *pollRepository) CastVote(ctx context.Context, vote domain.PollVote) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		queryLock := `
			SELECT option_id FROM sketchbook_poll_votes
			WHERE post_id = $1 AND user_id = $2
			FOR UPDATE
		`
		var previous uuid.UUID
		err := tx.QueryRowContext(ctx, queryLock, vote.PostID, vote.UserID).Scan(&previous)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return insertVote(ctx, tx, vote)
		case err != nil:
			return fmt.Errorf("failed to lock vote: %w", classify(err))
		case previous == vote.OptionID:
			return nil
		}

		queryUpdate := `
			UPDATE sketchbook_poll_votes SET option_id = $3, cast_at = $4
			WHERE post_id = $1 AND user_id = $2
		`
		if _, err := tx.ExecContext(ctx, queryUpdate, vote.PostID, vote.UserID, vote.OptionID, vote.CastAt); err != nil {
			if pqCode(err) == codeForeignKeyViolation {
				return domain.ErrInvalidOption
			}
			return fmt.Errorf("failed to change vote: %w", classify(err))
		}

		deltas := map[uuid.UUID]int{previous: -1, vote.OptionID: 1}
		ids := []uuid.UUID{previous, vote.OptionID}
		sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
		for _, id := range ids {
			if err := adjustVotes(ctx, tx, vote.PostID, id, deltas[id]); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertVote(ctx context.Context, tx *sql.Tx, vote domain.PollVote) error {
	query := `
		INSERT INTO sketchbook_poll_votes (post_id, user_id, option_id, cast_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, query, vote.PostID, vote.UserID, vote.OptionID, vote.CastAt)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation {
			return domain.ErrInvalidOption
		}
		return fmt.Errorf("failed to save vote: %w", classify(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Another request for the same voter inserted first.
		return domain.ErrConflictRetryable
	}
	return adjustVotes(ctx, tx, vote.PostID, vote.OptionID, 1)
}

func adjustVotes(ctx context.Context, tx *sql.Tx, postID, optionID uuid.UUID, delta int) error {
	query := `
		UPDATE sketchbook_poll_options SET votes = GREATEST(votes + $3, 0)
		WHERE id = $1 AND post_id = $2
	`
	res, err := tx.ExecContext(ctx, query, optionID, postID, delta)
	if err != nil {
		return fmt.Errorf("failed to update option votes: %w", classify(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInvalidOption
	}
	return nil
}

func (r *pollRepository) GetUserVote(ctx context.Context, postID, userID uuid.UUID) (*domain.PollVote, error) {
	query := `
		SELECT post_id, user_id, option_id, cast_at
		FROM sketchbook_poll_votes
		WHERE post_id = $1 AND user_id = $2
	`
	var v domain.PollVote
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&v.PostID, &v.UserID, &v.OptionID, &v.CastAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &v, nil
}

func (r *pollRepository) UserVotes(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	result := make(map[uuid.UUID]uuid.UUID)
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT post_id, option_id FROM sketchbook_poll_votes
		WHERE user_id = $1 AND post_id = ANY($2)
	`
	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(uuidStrings(postIDs)))
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID, optionID uuid.UUID
		if err := rows.Scan(&postID, &optionID); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		result[postID] = optionID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return result, nil
}
