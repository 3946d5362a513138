package batch

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harvesttrail/harvesttrail/internal/batch"
)

type Handler struct {
	wf *batch.Workflow
}

func NewHandler(wf *batch.Workflow) *Handler {
	return &Handler{wf: wf}
}

// BatchRoutes mounts the read API plus the direct-upload lifecycle
// (farmer uploads, distributor moves, retailer sells).
func (h *Handler) BatchRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.uploadDirect)
	r.Get("/lot/{lotNumber}", h.getByLot)
	r.Get("/{id}", h.get)
	r.Post("/{id}/verify", h.verifyQuality)
	r.Post("/{id}/transit", h.markInTransit)
	r.Post("/{id}/deliver", h.markDelivered)
	r.Post("/{id}/publish", h.publishForSale)
	r.Patch("/{id}/price", h.updatePrice)
	r.Post("/{id}/sold", h.markSold)
	r.Put("/{id}/sensor", h.attachSensor)
}

// OrderRoutes mounts the retailer-order path.
func (h *Handler) OrderRoutes(r chi.Router) {
	r.Post("/", h.placeOrder)
	r.Post("/{id}/confirm", h.confirmByRetailer)
	r.Post("/{id}/farmer-confirm", h.confirmByFarmer)
	r.Post("/{id}/reject", h.rejectByFarmer)
}

// writeError maps workflow errors onto HTTP statuses. Storage and transport
// errors never reach the client verbatim.
func writeError(w http.ResponseWriter, err error) {
	var vErr *batch.ValidationError

	switch {
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusBadRequest)
	case errors.Is(err, batch.ErrNotFound):
		http.Error(w, "batch not found", http.StatusNotFound)
	case errors.Is(err, batch.ErrInvalidState):
		http.Error(w, "batch status does not allow this action", http.StatusConflict)
	case errors.Is(err, batch.ErrTokenMismatch):
		http.Error(w, "confirmation token does not match", http.StatusForbidden)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func parseID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	batches, err := h.wf.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(batches))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	b, err := h.wf.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(b))
}

func (h *Handler) getByLot(w http.ResponseWriter, r *http.Request) {
	lot := chi.URLParam(r, "lotNumber")
	if lot == "" {
		http.Error(w, "lot number is required", http.StatusBadRequest)
		return
	}

	b, err := h.wf.GetByLotNumber(r.Context(), lot)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(b))
}

type placeOrderRequest struct {
	Crop          string  `json:"crop"`
	QuantityKg    float64 `json:"quantityKg"`
	Grade         string  `json:"grade"`
	Contact       string  `json:"contact"`
	ContactPhone  string  `json:"contactPhone"`
	PreferredDate string  `json:"preferredDate"`
	Price         string  `json:"price"`
	Notes         string  `json:"notes"`
}

type placeOrderResponse struct {
	Message           string        `json:"message"`
	Batch             batchResponse `json:"batch"`
	ConfirmationToken string        `json:"confirmationToken"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.wf.PlaceOrder(r.Context(), batch.OrderParams{
		Crop:          req.Crop,
		QuantityKg:    req.QuantityKg,
		Grade:         batch.Grade(req.Grade),
		Contact:       req.Contact,
		ContactPhone:  req.ContactPhone,
		PreferredDate: req.PreferredDate,
		Price:         req.Price,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// The token is returned exactly once, at placement.
	token := ""
	if b.ConfirmationToken != nil {
		token = *b.ConfirmationToken
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		Message:           "Order request placed successfully. Please confirm with the token.",
		Batch:             toResponse(b),
		ConfirmationToken: token,
	})
}

type confirmOrderRequest struct {
	Token string `json:"token"`
}

func (h *Handler) confirmByRetailer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req confirmOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.wf.ConfirmByRetailer(r.Context(), id, req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(b))
}

type farmerConfirmRequest struct {
	FarmerName     string   `json:"farmerName"`
	QuantityToSell *float64 `json:"quantityToSell,omitempty"`
}

func (h *Handler) confirmByFarmer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req farmerConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.wf.ConfirmByFarmer(r.Context(), id, req.FarmerName, req.QuantityToSell)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(b))
}

type rejectOrderRequest struct {
	FarmerName string `json:"farmerName"`
	Reason     string `json:"reason"`
}

func (h *Handler) rejectByFarmer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req rejectOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.wf.RejectByFarmer(r.Context(), id, req.FarmerName, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(b))
}

type uploadRequest struct {
	Crop         string         `json:"crop"`
	WeightKg     float64        `json:"weightKg"`
	HarvestDate  string         `json:"harvestDate"`
	Quality      string         `json:"quality"`
	Farmer       string         `json:"farmer"`
	FarmLocation string         `json:"farmLocation"`
	Price        string         `json:"price"`
	Notes        string         `json:"notes"`
	SensorData   *sensorRequest `json:"sensorData,omitempty"`
}

type sensorRequest struct {
	SoilMoisture   float64   `json:"soilMoisture"`
	Humidity       float64   `json:"humidity"`
	Temperature    float64   `json:"temperature"`
	GPSCoordinates string    `json:"gpsCoordinates"`
	LastUpdate     time.Time `json:"lastUpdate"`
}

func (h *Handler) uploadDirect(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := batch.UploadParams{
		Crop:         req.Crop,
		WeightKg:     req.WeightKg,
		HarvestDate:  req.HarvestDate,
		Quality:      batch.Grade(req.Quality),
		Farmer:       req.Farmer,
		FarmLocation: req.FarmLocation,
		Price:        req.Price,
		Notes:        req.Notes,
	}

	if req.SensorData != nil {
		params.Sensor = &batch.SensorReading{
			SoilMoisture:   req.SensorData.SoilMoisture,
			Humidity:       req.SensorData.Humidity,
			Temperature:    req.SensorData.Temperature,
			GPSCoordinates: req.SensorData.GPSCoordinates,
			LastUpdate:     req.SensorData.LastUpdate,
		}
	}

	b, err := h.wf.UploadDirect(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(b))
}

type transitionRequest struct {
	Actor    string `json:"actor"`
	Note     string `json:"note"`
	Location string `json:"location"`
	Price    string `json:"price"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	apply func(id uuid.UUID, req transitionRequest) (*batch.Batch, error)) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := apply(id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(b))
}

func (h *Handler) verifyQuality(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id uuid.UUID, req transitionRequest) (*batch.Batch, error) {
		return h.wf.VerifyQuality(r.Context(), id, req.Actor, req.Note)
	})
}

func (h *Handler) markInTransit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id uuid.UUID, req transitionRequest) (*batch.Batch, error) {
		return h.wf.MarkInTransit(r.Context(), id, req.Actor, req.Location, req.Note)
	})
}

func (h *Handler) markDelivered(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id uuid.UUID, req transitionRequest) (*batch.Batch, error) {
		return h.wf.MarkDelivered(r.Context(), id, req.Actor, req.Note)
	})
}

func (h *Handler) publishForSale(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id uuid.UUID, req transitionRequest) (*batch.Batch, error) {
		return h.wf.PublishForSale(r.Context(), id, req.Actor, req.Price, req.Note)
	})
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id uuid.UUID, req transitionRequest) (*batch.Batch, error) {
		return h.wf.UpdatePrice(r.Context(), id, req.Actor, req.Price)
	})
}

func (h *Handler) markSold(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id uuid.UUID, req transitionRequest) (*batch.Batch, error) {
		return h.wf.MarkSold(r.Context(), id, req.Actor, req.Note)
	})
}

func (h *Handler) attachSensor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req sensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.wf.AttachSensorReading(r.Context(), id, batch.SensorReading{
		SoilMoisture:   req.SoilMoisture,
		Humidity:       req.Humidity,
		Temperature:    req.Temperature,
		GPSCoordinates: req.GPSCoordinates,
		LastUpdate:     req.LastUpdate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(b))
}
