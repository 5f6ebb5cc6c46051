package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

const reconcileParallelism = 8

type reconcileService struct {
	repo ports.ReconcileRepository
}

// NewReconcileService returns the job that recomputes derived counters
// (option votes, reaction, member and post counts) from their source rows.
func NewReconcileService(repo ports.ReconcileRepository) ports.ReconcileService {
	return &reconcileService{
		repo: repo,
	}
}

func (s *reconcileService) ReconcileAll(ctx context.Context) error {
	postIDs, err := s.repo.ListPostIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch posts: %w", err)
	}
	if err := s.each(ctx, postIDs, s.repo.RecountPost, "post"); err != nil {
		return err
	}

	sketchbookIDs, err := s.repo.ListSketchbookIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch sketchbooks: %w", err)
	}
	return s.each(ctx, sketchbookIDs, s.repo.RecountSketchbook, "sketchbook")
}

func (s *reconcileService) each(ctx context.Context, ids []uuid.UUID, fn func(context.Context, uuid.UUID) error, kind string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileParallelism)

	for _, id := range ids {
		g.Go(func() error {
			if err := fn(gctx, id); err != nil {
				return fmt.Errorf("failed to reconcile %s %s: %w", kind, id, err)
			}
			return nil
		})
	}
	return g.Wait()
}
