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

const postColumns = `id, sketchbook_id, author_id, type, title, body, media, tags, visibility,
	poll_question, poll_closes_at, reactions_count, comments_count, views_count, created_at`

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) ports.PostRepository {
	return &postRepository{
		db: db,
	}
}

func (r *postRepository) Save(ctx context.Context, post *domain.Post) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		queryPost := `
			INSERT INTO sketchbook_posts (id, sketchbook_id, author_id, type, title, body, media, tags,
				visibility, poll_question, poll_closes_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := tx.ExecContext(ctx, queryPost,
			post.ID, post.SketchbookID, post.AuthorID, post.Type, post.Title, post.Body,
			pq.Array(post.Media), pq.Array(post.Tags), post.Visibility,
			post.PollQuestion, post.PollClosesAt, post.CreatedAt,
		)
		if err != nil {
			if pqCode(err) == codeForeignKeyViolation {
				return domain.ErrSketchbookNotFound
			}
			return fmt.Errorf("failed to insert post: %w", err)
		}

		if len(post.PollOptions) > 0 {
			queryOption := `
				INSERT INTO sketchbook_poll_options (id, post_id, label, position)
				VALUES ($1, $2, $3, $4)
			`
			stmt, err := tx.PrepareContext(ctx, queryOption)
			if err != nil {
				return fmt.Errorf("failed to prepare option statement: %w", err)
			}
			defer stmt.Close()

			for _, opt := range post.PollOptions {
				if _, err := stmt.ExecContext(ctx, opt.ID, post.ID, opt.Label, opt.Position); err != nil {
					return fmt.Errorf("failed to insert option: %w", err)
				}
			}
		}

		queryCount := `UPDATE sketchbooks SET posts_count = posts_count + 1 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, queryCount, post.SketchbookID); err != nil {
			return fmt.Errorf("failed to update posts count: %w", classify(err))
		}
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM sketchbook_posts WHERE id = $1 AND deleted_at IS NULL`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if err := r.attachOptions(ctx, []*domain.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *postRepository) ListBySketchbooks(ctx context.Context, sketchbookIDs []uuid.UUID, limit int) ([]*domain.Post, error) {
	if len(sketchbookIDs) == 0 {
		return []*domain.Post{}, nil
	}

	query := `
		SELECT ` + postColumns + `
		FROM sketchbook_posts
		WHERE sketchbook_id = ANY($1) AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT NULLIF($2::int, 0)
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(sketchbookIDs)), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []*domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	if err := r.attachOptions(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE sketchbook_posts SET deleted_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING sketchbook_id
		`
		var sketchbookID uuid.UUID
		if err := tx.QueryRowContext(ctx, query, id).Scan(&sketchbookID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrPostNotFound
			}
			return fmt.Errorf("failed to delete post: %w", classify(err))
		}

		queryCount := `UPDATE sketchbooks SET posts_count = GREATEST(posts_count - 1, 0) WHERE id = $1`
		if _, err := tx.ExecContext(ctx, queryCount, sketchbookID); err != nil {
			return fmt.Errorf("failed to update posts count: %w", classify(err))
		}
		return nil
	})
}

func (r *postRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	query := `
		UPDATE sketchbook_posts SET views_count = views_count + 1
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING views_count
	`
	var views int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&views); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrPostNotFound
		}
		return 0, fmt.Errorf("failed to record view: %w", classify(err))
	}
	return views, nil
}

func (r *postRepository) Engagement(ctx context.Context, sketchbookID uuid.UUID) ([]domain.PostEngagement, error) {
	query := `
		SELECT p.id, p.title, p.type, p.views_count, p.reactions_count, p.comments_count,
			COALESCE((SELECT SUM(o.votes) FROM sketchbook_poll_options o WHERE o.post_id = p.id), 0)
		FROM sketchbook_posts p
		WHERE p.sketchbook_id = $1 AND p.deleted_at IS NULL
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, sketchbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch engagement: %w", err)
	}
	defer rows.Close()

	result := []domain.PostEngagement{}
	for rows.Next() {
		var e domain.PostEngagement
		if err := rows.Scan(&e.PostID, &e.Title, &e.Type, &e.ViewsCount, &e.ReactionsCount, &e.CommentsCount, &e.PollVotes); err != nil {
			return nil, fmt.Errorf("failed to scan engagement: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating engagement: %w", err)
	}
	return result, nil
}

// attachOptions loads poll options for every poll post in one query.
func (r *postRepository) attachOptions(ctx context.Context, posts []*domain.Post) error {
	byID := make(map[uuid.UUID]*domain.Post)
	var ids []string
	for _, p := range posts {
		if p.Type == domain.PostPoll {
			byID[p.ID] = p
			ids = append(ids, p.ID.String())
		}
	}
	if len(ids) == 0 {
		return nil
	}

	query := `
		SELECT id, post_id, label, votes, position
		FROM sketchbook_poll_options
		WHERE post_id = ANY($1)
		ORDER BY post_id, position
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get poll options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var opt domain.PollOption
		if err := rows.Scan(&opt.ID, &opt.PostID, &opt.Label, &opt.Votes, &opt.Position); err != nil {
			return fmt.Errorf("failed to scan option: %w", err)
		}
		p := byID[opt.PostID]
		p.PollOptions = append(p.PollOptions, opt)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating options: %w", err)
	}
	return nil
}

func scanPost(s scanner) (*domain.Post, error) {
	var p domain.Post
	err := s.Scan(
		&p.ID, &p.SketchbookID, &p.AuthorID, &p.Type, &p.Title, &p.Body,
		pq.Array(&p.Media), pq.Array(&p.Tags), &p.Visibility,
		&p.PollQuestion, &p.PollClosesAt, &p.ReactionsCount, &p.CommentsCount, &p.ViewsCount, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Media == nil {
		p.Media = []string{}
	}
	return &p, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
