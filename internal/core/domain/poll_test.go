package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 0.0, Percentage(3, 0))
	assert.Equal(t, 50.0, Percentage(1, 2))
	assert.Equal(t, 68.75, Percentage(11, 16))
}

func TestNewPollResult(t *testing.T) {
	now := time.Now()
	closes := now.Add(time.Hour)
	question := "Which glaze?"
	a, b := uuid.New(), uuid.New()
	post := &Post{
		ID:           uuid.New(),
		Type:         PostPoll,
		PollQuestion: &question,
		PollClosesAt: &closes,
		PollOptions: []PollOption{
			{ID: a, Label: "A", Votes: 11},
			{ID: b, Label: "B", Votes: 5, Position: 1},
		},
	}

	result := NewPollResult(post, &a, now)
	assert.Equal(t, int64(16), result.TotalVotes)
	assert.Equal(t, "Which glaze?", result.Question)
	require.Len(t, result.Options, 2)
	assert.Equal(t, 68.75, result.Options[0].Percentage)
	assert.Equal(t, 31.25, result.Options[1].Percentage)
	assert.Equal(t, &a, result.UserVotedOptionID)
	assert.False(t, result.IsClosed)

	assert.True(t, NewPollResult(post, nil, closes).IsClosed, "a poll is closed at its closing instant")
}

func TestEmptyPollResult(t *testing.T) {
	post := &Post{
		ID:          uuid.New(),
		Type:        PostPoll,
		PollOptions: []PollOption{{ID: uuid.New()}, {ID: uuid.New()}},
	}

	result := NewPollResult(post, nil, time.Now())
	assert.Equal(t, int64(0), result.TotalVotes)
	for _, opt := range result.Options {
		assert.Equal(t, 0.0, opt.Percentage)
	}
	assert.False(t, result.IsClosed, "polls without a close time stay open")
}

func TestTeaserRedactsContent(t *testing.T) {
	body := "details"
	question := "q"
	post := &Post{
		ID:           uuid.New(),
		Type:         PostPoll,
		Title:        "Preview",
		Body:         &body,
		Media:        []string{"https://cdn.test/a.png"},
		PollQuestion: &question,
		PollOptions:  []PollOption{{ID: uuid.New()}},
		Visibility:   VisibilityMembersOnly,
	}

	teaser := post.Teaser()
	assert.Equal(t, "Preview", teaser.Title)
	assert.Nil(t, teaser.Body)
	assert.Nil(t, teaser.PollQuestion)
	assert.Empty(t, teaser.PollOptions)
	assert.Empty(t, teaser.Media)
}
