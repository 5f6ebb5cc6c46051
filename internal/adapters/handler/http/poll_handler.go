package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type PollHandler struct {
	service ports.SketchbookService
	logger  *slog.Logger
}

func NewPollHandler(service ports.SketchbookService, logger *slog.Logger) *PollHandler {
	return &PollHandler{
		service: service,
		logger:  logger,
	}
}

type voteRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req voteRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	result, err := h.service.VoteInPoll(r.Context(), ports.VoteInput{
		PostID:   postID,
		OptionID: req.OptionID,
		UserID:   currentUser(r),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PollHandler) Results(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.service.GetPollResults(r.Context(), postID, currentUser(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
