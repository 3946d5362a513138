package pricing

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harvesttrail/harvesttrail/internal/batch"
	"github.com/harvesttrail/harvesttrail/internal/pricing"
)

type Handler struct {
	svc *pricing.Service
}

func NewHandler(svc *pricing.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/lookup", h.lookup)
	r.Put("/", h.set)
}

type priceResponse struct {
	Crop  string      `json:"crop"`
	Grade batch.Grade `json:"grade"`
	PerKg int64       `json:"perKg"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	prices, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]priceResponse, 0, len(prices))
	for _, p := range prices {
		resp = append(resp, priceResponse{Crop: p.Crop, Grade: p.Grade, PerKg: p.PerKg})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	crop := r.URL.Query().Get("crop")
	grade, ok := batch.ParseGrade(r.URL.Query().Get("grade"))

	if crop == "" || !ok {
		http.Error(w, "crop and grade query parameters are required", http.StatusBadRequest)
		return
	}

	perKg, err := h.svc.Lookup(r.Context(), crop, grade)
	if err != nil {
		if errors.Is(err, pricing.ErrNoPrice) {
			http.Error(w, "no price listed for this crop and grade", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(priceResponse{Crop: crop, Grade: grade, PerKg: perKg}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type setPriceRequest struct {
	Crop  string `json:"crop"`
	Grade string `json:"grade"`
	PerKg int64  `json:"perKg"`
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	var req setPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.svc.Set(r.Context(), pricing.Price{
		Crop:  req.Crop,
		Grade: batch.Grade(req.Grade),
		PerKg: req.PerKg,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
