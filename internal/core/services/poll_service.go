package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type pollService struct {
	postRepo ports.PostRepository
	pollRepo ports.PollRepository
}

func NewPollService(postRepo ports.PostRepository, pollRepo ports.PollRepository) ports.PollService {
	return &pollService{
		postRepo: postRepo,
		pollRepo: pollRepo,
	}
}

func (s *pollService) CastVote(ctx context.Context, input ports.VoteInput) (*domain.PollResult, error) {
	post, err := s.getPoll(ctx, input.PostID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if post.PollClosed(now) {
		return nil, domain.ErrPollClosed
	}
	if !post.HasOption(input.OptionID) {
		return nil, domain.ErrInvalidOption
	}

	vote := domain.PollVote{
		PostID:   input.PostID,
		UserID:   input.UserID,
		OptionID: input.OptionID,
		CastAt:   now,
	}
	err = retryConflicts(ctx, func() error {
		return s.pollRepo.CastVote(ctx, vote)
	})
	if err != nil {
		return nil, err
	}

	post, err = s.getPoll(ctx, input.PostID)
	if err != nil {
		return nil, err
	}
	optionID := input.OptionID
	return domain.NewPollResult(post, &optionID, now), nil
}

func (s *pollService) GetResults(ctx context.Context, postID, viewerID uuid.UUID) (*domain.PollResult, error) {
	post, err := s.getPoll(ctx, postID)
	if err != nil {
		return nil, err
	}

	var voted *uuid.UUID
	if viewerID != uuid.Nil {
		vote, err := s.pollRepo.GetUserVote(ctx, postID, viewerID)
		if err != nil {
			return nil, err
		}
		if vote != nil {
			voted = &vote.OptionID
		}
	}
	return domain.NewPollResult(post, voted, time.Now().UTC()), nil
}

func (s *pollService) getPoll(ctx context.Context, postID uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, domain.ErrPollNotFound
		}
		return nil, err
	}
	if !post.IsPoll() {
		return nil, domain.ErrPollNotFound
	}
	return post, nil
}
