package http

import (
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type PostHandler struct {
	service ports.SketchbookService
	logger  *slog.Logger
}

func NewPostHandler(service ports.SketchbookService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		service: service,
		logger:  logger,
	}
}

type feedResponse struct {
	Items []domain.FeedItem `json:"items"`
}

func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitQuery(w, r)
	if !ok {
		return
	}

	items, err := h.service.GetCommunityFeed(r.Context(), currentUser(r), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, feedResponse{Items: items})
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	brandID, ok := uuidParam(w, r, "brandID")
	if !ok {
		return
	}

	var input ports.CreatePostInput
	if !decodeBody(w, r, &input, false) {
		return
	}

	post, err := h.service.CreatePost(r.Context(), currentUser(r), brandID, input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePost(r.Context(), currentUser(r), postID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type viewsResponse struct {
	ViewsCount int64 `json:"views_count"`
}

func (h *PostHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	views, err := h.service.RecordView(r.Context(), postID, currentUser(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsResponse{ViewsCount: views})
}

type reactionRequest struct {
	Type domain.ReactionType `json:"type"`
}

func (h *PostHandler) React(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req reactionRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	result, err := h.service.AddReaction(r.Context(), ports.ReactionInput{
		PostID: postID,
		UserID: currentUser(r),
		Type:   req.Type,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
