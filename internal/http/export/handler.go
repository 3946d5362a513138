package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harvesttrail/harvesttrail/internal/batch"
	"github.com/harvesttrail/harvesttrail/internal/export"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/ledger", h.ledger)
	r.Get("/summary", h.summary)
}

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	var status *batch.Status

	if s := r.URL.Query().Get("status"); s != "" {
		st := batch.Status(s)
		status = &st
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"provenance_%s.csv\"", time.Now().Format("20060102")))

	if err := h.svc.WriteLedger(r.Context(), w, status); err != nil {
		// Headers are already out; all we can do is log.
		slog.Error("failed to write ledger", "error", err)
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.Summary(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
}
