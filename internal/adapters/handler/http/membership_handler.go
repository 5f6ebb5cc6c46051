package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/sketchbook/internal/core/domain"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type MembershipHandler struct {
	service ports.SketchbookService
	logger  *slog.Logger
}

func NewMembershipHandler(service ports.SketchbookService, logger *slog.Logger) *MembershipHandler {
	return &MembershipHandler{
		service: service,
		logger:  logger,
	}
}

type membershipResponse struct {
	Membership *domain.Membership `json:"membership"`
	IsMember   bool               `json:"is_member"`
}

type joinRequest struct {
	UserID uuid.UUID         `json:"user_id"`
	Source domain.JoinSource `json:"source"`
}

func (h *MembershipHandler) CheckMembership(w http.ResponseWriter, r *http.Request) {
	sketchbookID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	caller := currentUser(r)
	userID, ok := uuidQuery(w, r, "user_id", caller)
	if !ok {
		return
	}

	m, err := h.service.CheckMembership(r.Context(), caller, sketchbookID, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, membershipResponse{Membership: m, IsMember: m.IsActive()})
}

func (h *MembershipHandler) Join(w http.ResponseWriter, r *http.Request) {
	sketchbookID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req joinRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	m, err := h.service.Join(r.Context(), ports.JoinInput{
		SketchbookID: sketchbookID,
		CallerID:     currentUser(r),
		UserID:       req.UserID,
		Source:       req.Source,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, membershipResponse{Membership: m, IsMember: m.IsActive()})
}

func (h *MembershipHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	sketchbookID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	m, err := h.service.RequestAccess(r.Context(), sketchbookID, currentUser(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, membershipResponse{Membership: m, IsMember: m.IsActive()})
}

func (h *MembershipHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	sketchbookID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	caller := currentUser(r)
	userID, ok := uuidQuery(w, r, "user_id", caller)
	if !ok {
		return
	}

	m, err := h.service.Revoke(r.Context(), caller, sketchbookID, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, membershipResponse{Membership: m, IsMember: false})
}

type unlockResponse struct {
	Unlocked bool `json:"unlocked"`
}

func (h *MembershipHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	sketchbookID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	unlocked, err := h.service.UnlockFromSpend(r.Context(), currentUser(r), sketchbookID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, unlockResponse{Unlocked: unlocked})
}
