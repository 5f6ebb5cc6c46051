package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type membershipService struct {
	repo ports.MembershipRepository
}

func NewMembershipService(repo ports.MembershipRepository) ports.MembershipService {
	return &membershipService{
		repo: repo,
	}
}

// CheckMembership returns nil without error when the user never joined.
func (s *membershipService) CheckMembership(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	return s.repo.Get(ctx, sketchbookID, userID)
}

func (s *membershipService) ListMemberships(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *membershipService) Join(ctx context.Context, sketchbookID, userID uuid.UUID, source domain.JoinSource) (*domain.Membership, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if !source.Valid() {
		return nil, fmt.Errorf("%w: unknown join source %q", domain.ErrInvalidInput, source)
	}

	var membership *domain.Membership
	err := retryConflicts(ctx, func() error {
		m, err := s.repo.Activate(ctx, sketchbookID, userID, source, time.Now().UTC())
		if err != nil {
			return err
		}
		membership = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *membershipService) RequestAccess(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	var membership *domain.Membership
	err := retryConflicts(ctx, func() error {
		m, err := s.repo.Request(ctx, sketchbookID, userID, time.Now().UTC())
		if err != nil {
			return err
		}
		membership = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *membershipService) Revoke(ctx context.Context, sketchbookID, userID uuid.UUID) (*domain.Membership, error) {
	var membership *domain.Membership
	err := retryConflicts(ctx, func() error {
		m, err := s.repo.Revoke(ctx, sketchbookID, userID)
		if err != nil {
			return err
		}
		membership = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}
