package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type membershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) ports.MembershipRepository {
	return &membershipRepository{
		db: db,
	}
}

func (r *membershipRepository) Get(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error) {
	query := `
		SELECT id, sketchbook_id, user_id, status, join_source, joined_at
		FROM sketchbook_memberships
		WHERE sketchbook_id = $1 AND user_id = $2
	`
	m, err := scanMembership(r.db.QueryRowContext(ctx, query, sketchbookID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error) {
	query := `
		SELECT id, sketchbook_id, user_id, status, join_source, joined_at
		FROM sketchbook_memberships
		WHERE user_id = $1
		ORDER BY joined_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var result []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}
	return result, nil
}

func (r *membershipRepository) Activate(ctx context.Context, sketchbookID, userID uuid.UUID, source domain.JoinSource, now time.Time) (*domain.Membership, error) {
	var result *domain.Membership
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		existing, err := lockMembership(ctx, tx, sketchbookID, userID)
		if err != nil {
			return err
		}

		next, activated := domain.ApplyJoin(existing, sketchbookID, userID, source, now)
		result = next
		if !activated {
			return nil
		}

		if err := saveMembership(ctx, tx, next, existing == nil); err != nil {
			return err
		}
		return adjustMembers(ctx, tx, sketchbookID, 1)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *membershipRepository) Request(ctx context.Context, sketchbookID, userID uuid.UUID, now time.Time) (*domain.Membership, error) {
	var result *domain.Membership
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		existing, err := lockMembership(ctx, tx, sketchbookID, userID)
		if err != nil {
			return err
		}

		next, changed := domain.ApplyRequest(existing, sketchbookID, userID, now)
		result = next
		if !changed {
			return nil
		}
		return saveMembership(ctx, tx, next, existing == nil)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *membershipRepository) Revoke(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error) {
	var result *domain.Membership
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		existing, err := lockMembership(ctx, tx, sketchbookID, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrMembershipNotFound
		}

		next, deactivated := domain.ApplyRevoke(existing)
		result = next
		if err := saveMembership(ctx, tx, next, false); err != nil {
			return err
		}
		if deactivated {
			return adjustMembers(ctx, tx, sketchbookID, -1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockMembership reads the caller's own row with FOR UPDATE. Concurrent first
// inserts for the same key are caught by the unique constraint instead.
func lockMembership(ctx context.Context, tx *sql.Tx, sketchbookID, userID uuid.UUID) (*domain.Membership, error) {
	query := `
		SELECT id, sketchbook_id, user_id, status, join_source, joined_at
		FROM sketchbook_memberships
		WHERE sketchbook_id = $1 AND user_id = $2
		FOR UPDATE
	`
	m, err := scanMembership(tx.QueryRowContext(ctx, query, sketchbookID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock membership: %w", classify(err))
	}
	return m, nil
}

func saveMembership(ctx context.Context, tx *sql.Tx, m *domain.Membership, insert bool) error {
	if insert {
		query := `
			INSERT INTO sketchbook_memberships (id, sketchbook_id, user_id, status, join_source, joined_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.ExecContext(ctx, query, m.ID, m.SketchbookID, m.UserID, m.Status, m.JoinSource, m.JoinedAt)
		if err != nil {
			if pqCode(err) == codeForeignKeyViolation {
				return domain.ErrSketchbookNotFound
			}
			return fmt.Errorf("failed to insert membership: %w", classify(err))
		}
		return nil
	}

	query := `
		UPDATE sketchbook_memberships
		SET status = $2, join_source = $3, joined_at = $4
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query, m.ID, m.Status, m.JoinSource, m.JoinedAt); err != nil {
		return fmt.Errorf("failed to update membership: %w", classify(err))
	}
	return nil
}

func adjustMembers(ctx context.Context, tx *sql.Tx, sketchbookID uuid.UUID, delta int) error {
	query := `UPDATE sketchbooks SET members_count = GREATEST(members_count + $2, 0) WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, sketchbookID, delta); err != nil {
		return fmt.Errorf("failed to update members count: %w", classify(err))
	}
	return nil
}

func scanMembership(s scanner) (*domain.Membership, error) {
	var m domain.Membership
	if err := s.Scan(&m.ID, &m.SketchbookID, &m.UserID, &m.Status, &m.JoinSource, &m.JoinedAt); err != nil {
		return nil, err
	}
	return &m, nil
}
