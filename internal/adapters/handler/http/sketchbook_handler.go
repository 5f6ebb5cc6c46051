package http

import (
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

type SketchbookHandler struct {
	service ports.SketchbookService
	logger  *slog.Logger
}

func NewSketchbookHandler(service ports.SketchbookService, logger *slog.Logger) *SketchbookHandler {
	return &SketchbookHandler{
		service: service,
		logger:  logger,
	}
}

func (h *SketchbookHandler) GetSketchbook(w http.ResponseWriter, r *http.Request) {
	brandID, ok := uuidParam(w, r, "brandID")
	if !ok {
		return
	}

	sb, err := h.service.GetSketchbook(r.Context(), brandID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sb)
}

func (h *SketchbookHandler) GetSketchbookView(w http.ResponseWriter, r *http.Request) {
	brandID, ok := uuidParam(w, r, "brandID")
	if !ok {
		return
	}
	limit, ok := limitQuery(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetSketchbookView(r.Context(), brandID, currentUser(r), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SketchbookHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	brandID, ok := uuidParam(w, r, "brandID")
	if !ok {
		return
	}

	var input ports.UpdateSettingsInput
	if !decodeBody(w, r, &input, false) {
		return
	}

	sb, err := h.service.UpdateSettings(r.Context(), currentUser(r), brandID, input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sb)
}

func (h *SketchbookHandler) Follow(w http.ResponseWriter, r *http.Request) {
	brandID, ok := uuidParam(w, r, "brandID")
	if !ok {
		return
	}

	if err := h.service.Follow(r.Context(), currentUser(r), brandID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SketchbookHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	brandID, ok := uuidParam(w, r, "brandID")
	if !ok {
		return
	}

	if err := h.service.Unfollow(r.Context(), currentUser(r), brandID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SketchbookHandler) SpendEligibility(w http.ResponseWriter, r *http.Request) {
	brandID, ok := uuidParam(w, r, "brandID")
	if !ok {
		return
	}

	eligibility, err := h.service.CheckSpendEligibility(r.Context(), currentUser(r), brandID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibility)
}

func (h *SketchbookHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	brandID, ok := uuidParam(w, r, "brandID")
	if !ok {
		return
	}

	analytics, err := h.service.GetAnalytics(r.Context(), currentUser(r), brandID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}
