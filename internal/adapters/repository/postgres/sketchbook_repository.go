package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

const sketchbookColumns = `id, brand_id, title, description, is_public, rule_kind, min_spend,
	spend_window_months, members_count, posts_count, created_at, updated_at`

type sketchbookRepository struct {
	db *sql.DB
}

func NewSketchbookRepository(db *sql.DB) ports.SketchbookRepository {
	return &sketchbookRepository{
		db: db,
	}
}

func (r *sketchbookRepository) GetOrCreate(ctx context.Context, sb *domain.Sketchbook) (*domain.Sketchbook, error) {
	query := `
		INSERT INTO sketchbooks (id, brand_id, title, description, is_public, rule_kind, min_spend, spend_window_months, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (brand_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		sb.ID, sb.BrandID, sb.Title, sb.Description, sb.IsPublic,
		sb.MembershipRule.Kind, sb.MembershipRule.MinSpend, sb.MembershipRule.WindowMonths,
		sb.CreatedAt, sb.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sketchbook: %w", classify(err))
	}
	return r.GetByBrand(ctx, sb.BrandID)
}

func (r *sketchbookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sketchbook, error) {
	query := `SELECT ` + sketchbookColumns + ` FROM sketchbooks WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *sketchbookRepository) GetByBrand(ctx context.Context, brandID uuid.UUID) (*domain.Sketchbook, error) {
	query := `SELECT ` + sketchbookColumns + ` FROM sketchbooks WHERE brand_id = $1`
	return r.getOne(ctx, query, brandID)
}

func (r *sketchbookRepository) getOne(ctx context.Context, query string, arg any) (*domain.Sketchbook, error) {
	sb, err := scanSketchbook(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSketchbookNotFound
		}
		return nil, fmt.Errorf("failed to get sketchbook: %w", err)
	}
	return sb, nil
}

func (r *sketchbookRepository) UpdateSettings(ctx context.Context, id uuid.UUID, input ports.UpdateSettingsInput) (*domain.Sketchbook, error) {
	query := `
		UPDATE sketchbooks SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			is_public = COALESCE($4, is_public),
			rule_kind = COALESCE($5, rule_kind),
			min_spend = COALESCE($6, min_spend),
			spend_window_months = COALESCE($7, spend_window_months),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sketchbookColumns

	var ruleKind *string
	if input.RuleKind != nil {
		kind := string(*input.RuleKind)
		ruleKind = &kind
	}

	sb, err := scanSketchbook(r.db.QueryRowContext(ctx, query, id,
		input.Title, input.Description, input.IsPublic, ruleKind, input.MinSpend, input.WindowMonths,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSketchbookNotFound
		}
		return nil, fmt.Errorf("failed to update sketchbook: %w", classify(err))
	}
	return sb, nil
}

func (r *sketchbookRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Sketchbook, error) {
	query := `
		SELECT ` + sketchbookColumns + `
		FROM sketchbooks s
		WHERE s.brand_id IN (SELECT brand_id FROM user_follows WHERE follower_id = $1)
		   OR s.id IN (SELECT sketchbook_id FROM sketchbook_memberships WHERE user_id = $1 AND status = 'active')
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sketchbooks: %w", err)
	}
	defer rows.Close()

	var result []*domain.Sketchbook
	for rows.Next() {
		sb, err := scanSketchbook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sketchbook: %w", err)
		}
		result = append(result, sb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sketchbooks: %w", err)
	}
	return result, nil
}

func (r *sketchbookRepository) Follow(ctx context.Context, follow domain.Follow) error {
	query := `
		INSERT INTO user_follows (follower_id, brand_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, brand_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, follow.FollowerID, follow.BrandID, follow.CreatedAt); err != nil {
		return fmt.Errorf("failed to follow brand: %w", err)
	}
	return nil
}

func (r *sketchbookRepository) Unfollow(ctx context.Context, userID, brandID uuid.UUID) error {
	query := `DELETE FROM user_follows WHERE follower_id = $1 AND brand_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, brandID); err != nil {
		return fmt.Errorf("failed to unfollow brand: %w", err)
	}
	return nil
}

func scanSketchbook(s scanner) (*domain.Sketchbook, error) {
	var sb domain.Sketchbook
	err := s.Scan(
		&sb.ID, &sb.BrandID, &sb.Title, &sb.Description, &sb.IsPublic,
		&sb.MembershipRule.Kind, &sb.MembershipRule.MinSpend, &sb.MembershipRule.WindowMonths,
		&sb.MembersCount, &sb.PostsCount, &sb.CreatedAt, &sb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sb, nil
}
