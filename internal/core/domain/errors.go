package domain

import "errors"

var (
	ErrSketchbookNotFound = errors.New("sketchbook not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrPollNotFound       = errors.New("poll not found")
	ErrPollClosed         = errors.New("poll is closed")
	ErrInvalidOption      = errors.New("invalid option for this poll")
	ErrUnauthorized       = errors.New("not allowed for this user")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflictRetryable  = errors.New("concurrent update, retry")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrSketchbookNotFound) ||
		errors.Is(err, ErrPostNotFound) ||
		errors.Is(err, ErrMembershipNotFound) ||
		errors.Is(err, ErrPollNotFound)
}
