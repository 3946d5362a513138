package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Notification channels. Each dashboard subscribes to its own channel; the
// system channel carries every lifecycle event.
const (
	ChannelSystem      = "system-channel"
	ChannelFarmer      = "farmer-channel"
	ChannelRetailer    = "retailer-channel"
	ChannelDistributor = "distributor-channel"
)

// Event names pushed to connected dashboards.
const (
	EventBatchUploaded             = "batch-uploaded"
	EventBatchUpdated              = "batch-updated"
	EventBatchConfirmed            = "batch-confirmed"
	EventOrderAwaitingConfirmation = "order-awaiting-confirmation"
	EventOrderConfirmedByFarmer    = "order-confirmed-by-farmer"
	EventOrderRejected             = "order-rejected"
)

//go:generate mockgen -source=workflow.go -destination=workflow_mock.go -package=batch

// Repository persists batches. Update is conditional on the status the
// caller read: if the stored status no longer matches, it must return
// ErrStaleStatus and write nothing, which is what keeps two racing
// transitions from both succeeding.
type Repository interface {
	Create(ctx context.Context, b *Batch) error
	Get(ctx context.Context, id uuid.UUID) (*Batch, error)
	GetByLotNumber(ctx context.Context, lotNumber string) (*Batch, error)
	List(ctx context.Context) ([]*Batch, error)
	Update(ctx context.Context, b *Batch, expected Status) error
}

// Publisher delivers events to a named channel. Delivery is best-effort:
// the workflow logs failures and never fails a committed transition on them.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// TokenIssuer mints and checks the single-use confirmation token that
// authorizes the retailer-confirmation step of a pending order.
type TokenIssuer interface {
	Issue(batchID uuid.UUID) (string, error)
	Verify(token string, batchID uuid.UUID) error
}

// Workflow is the batch lifecycle engine. It owns the state machine and the
// audit trail; storage and delivery are injected.
type Workflow struct {
	repo   Repository
	pub    Publisher
	tokens TokenIssuer
}

func NewWorkflow(repo Repository, pub Publisher, tokens TokenIssuer) *Workflow {
	return &Workflow{repo: repo, pub: pub, tokens: tokens}
}

// OrderParams is the input for a retailer-initiated order request.
type OrderParams struct {
	Crop          string
	QuantityKg    float64
	Grade         Grade
	Contact       string
	ContactPhone  string
	PreferredDate string
	Price         string
	Notes         string
}

// PlaceOrder opens the retailer-order path: a new batch in
// StatusRequested with a provisional lot number and a confirmation token
// the retailer must present to move it forward.
func (w *Workflow) PlaceOrder(ctx context.Context, p OrderParams) (*Batch, error) {
	switch {
	case p.Crop == "":
		return nil, invalidf("crop", "required")
	case p.QuantityKg <= 0:
		return nil, invalidf("quantityKg", "must be greater than 0")
	case p.Contact == "":
		return nil, invalidf("contact", "required")
	case p.Price == "":
		return nil, invalidf("price", "required")
	}

	if _, ok := ParseGrade(string(p.Grade)); !ok {
		return nil, invalidf("grade", "unknown grade %q", p.Grade)
	}

	id := uuid.New()

	token, err := w.tokens.Issue(id)
	if err != nil {
		return nil, fmt.Errorf("issuing confirmation token: %w", err)
	}

	now := time.Now().UTC()
	lot := provisionalLotNumber()
	harvestDate := p.PreferredDate
	if harvestDate == "" {
		harvestDate = now.Format(time.DateOnly)
	}

	b := &Batch{
		ID:                id,
		LotNumber:         &lot,
		ConfirmationToken: &token,
		Crop:              p.Crop,
		Quality:           p.Grade,
		Weight:            FormatKilograms(p.QuantityKg),
		Price:             &p.Price,
		Retailer:          &p.Contact,
		HarvestDate:       harvestDate,
		Status:            StatusRequested,
		CreatedAt:         now,
		UpdatedAt:         now,
		TrackingHistory: []AuditEntry{{
			Timestamp: now,
			Status:    "Order Request Placed",
			Note: fmt.Sprintf("Retailer %s placed an order request. Awaiting retailer confirmation.",
				p.Contact),
			Actor: p.Contact,
		}},
	}

	if p.ContactPhone != "" {
		b.RetailerContact = &p.ContactPhone
	}

	if p.Notes != "" {
		b.Notes = &p.Notes
	}

	if err := w.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("creating order request: %w", err)
	}

	return b, nil
}

// ConfirmByRetailer moves a requested order to StatusAwaitingFarmer once the
// retailer presents the token issued at placement. The token is single-use
// and cleared by this transition.
func (w *Workflow) ConfirmByRetailer(ctx context.Context, id uuid.UUID, token string) (*Batch, error) {
	b, err := w.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusRequested {
		return nil, ErrInvalidState
	}

	if b.ConfirmationToken == nil || *b.ConfirmationToken != token {
		return nil, ErrTokenMismatch
	}

	if err := w.tokens.Verify(token, id); err != nil {
		return nil, ErrTokenMismatch
	}

	b.Status = StatusAwaitingFarmer
	b.ConfirmationToken = nil
	w.append(b, "Order Confirmed by Retailer",
		fmt.Sprintf("Retailer %s confirmed the order request. Awaiting a farmer to fulfil it.", actorOf(b.Retailer, "Retailer")),
		actorOf(b.Retailer, "Retailer"), "")

	if err := w.save(ctx, b, StatusRequested); err != nil {
		return nil, err
	}

	w.publish(ctx, ChannelFarmer, EventOrderAwaitingConfirmation, eventPayload{Batch: b})

	return b, nil
}

// ConfirmByFarmer claims a pending order for farmerName and moves it to
// StatusProcessing. quantityKg nil means the full requested quantity; the
// farmer may fulfil less than requested but never more.
func (w *Workflow) ConfirmByFarmer(ctx context.Context, id uuid.UUID, farmerName string, quantityKg *float64) (*Batch, error) {
	if farmerName == "" {
		return nil, invalidf("farmerName", "required")
	}

	b, err := w.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusAwaitingFarmer {
		return nil, ErrInvalidState
	}

	requested, err := ParseKilograms(b.Weight)
	if err != nil {
		return nil, fmt.Errorf("reading requested quantity: %w", err)
	}

	confirmed := requested
	if quantityKg != nil {
		confirmed = *quantityKg
	}

	if confirmed <= 0 {
		return nil, invalidf("quantityKg", "must be greater than 0")
	}

	if confirmed > requested {
		return nil, invalidf("quantityKg", "cannot sell more than the %s requested", FormatKilograms(requested))
	}

	note := fmt.Sprintf("Farmer %s confirmed the order for %skg of %s.", farmerName,
		trimUnit(FormatKilograms(confirmed)), b.Crop)
	if confirmed < requested {
		note += fmt.Sprintf(" Quantity adjusted from %skg to %skg.",
			trimUnit(FormatKilograms(requested)), trimUnit(FormatKilograms(confirmed)))
	}

	b.Status = StatusProcessing
	b.Farmer = &farmerName
	b.Weight = FormatKilograms(confirmed)
	w.append(b, "Farmer Confirmed Order", note, farmerName, locationOf(b))

	if err := w.save(ctx, b, StatusAwaitingFarmer); err != nil {
		return nil, err
	}

	w.publish(ctx, ChannelSystem, EventBatchConfirmed, confirmPayload{
		Batch:             b,
		FarmerName:        farmerName,
		QuantityConfirmed: confirmed,
		OriginalQuantity:  requested,
	})

	if b.Retailer != nil {
		w.publish(ctx, ChannelRetailer, EventOrderConfirmedByFarmer, messagePayload{
			Batch: b,
			Message: fmt.Sprintf("Your order for %s of %s has been confirmed by the farmer.",
				b.Weight, b.Crop),
		})
	}

	return b, nil
}

// RejectByFarmer declines a pending order. The reason (defaulted when empty)
// is recorded both in the free-text notes and in the audit trail. Rejected is
// terminal.
func (w *Workflow) RejectByFarmer(ctx context.Context, id uuid.UUID, farmerName, reason string) (*Batch, error) {
	b, err := w.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusAwaitingFarmer {
		return nil, ErrInvalidState
	}

	if reason == "" {
		reason = "Order rejected by farmer."
	}

	actor := farmerName
	if actor == "" {
		actor = "Farmer"
	}

	b.Status = StatusRejected
	appendNote(b, reason)
	w.append(b, "Order Rejected", reason, actor, "")

	if err := w.save(ctx, b, StatusAwaitingFarmer); err != nil {
		return nil, err
	}

	payload := messagePayload{Batch: b, Message: reason}
	w.publish(ctx, ChannelSystem, EventOrderRejected, payload)
	w.publish(ctx, ChannelRetailer, EventOrderRejected, payload)
	w.publish(ctx, ChannelDistributor, EventOrderRejected, payload)

	return b, nil
}

// UploadParams is the input for the farmer direct-upload path.
type UploadParams struct {
	Crop         string
	WeightKg     float64
	HarvestDate  string
	Quality      Grade
	Farmer       string
	FarmLocation string
	Price        string
	Notes        string
	Sensor       *SensorReading
}

// UploadDirect registers a harvested batch, entering the state machine at
// StatusPendingVerification with a permanent lot number and track URL.
func (w *Workflow) UploadDirect(ctx context.Context, p UploadParams) (*Batch, error) {
	switch {
	case p.Crop == "":
		return nil, invalidf("crop", "required")
	case p.WeightKg <= 0:
		return nil, invalidf("weightKg", "must be greater than 0")
	case p.HarvestDate == "":
		return nil, invalidf("harvestDate", "required")
	}

	if _, ok := ParseGrade(string(p.Quality)); !ok {
		return nil, invalidf("quality", "unknown grade %q", p.Quality)
	}

	now := time.Now().UTC()
	lot := registeredLotNumber(now)
	trackURL := "/track?lot=" + lot

	actor := p.Farmer
	if actor == "" {
		actor = "System"
	}

	b := &Batch{
		ID:          uuid.New(),
		LotNumber:   &lot,
		Crop:        p.Crop,
		Quality:     p.Quality,
		Weight:      FormatKilograms(p.WeightKg),
		HarvestDate: p.HarvestDate,
		Status:      StatusPendingVerification,
		SensorData:  p.Sensor,
		TrackURL:    &trackURL,
		CreatedAt:   now,
		UpdatedAt:   now,
		TrackingHistory: []AuditEntry{{
			Timestamp: now,
			Status:    StatusPendingVerification.Label(),
			Note:      "Batch created",
			Actor:     actor,
			Location:  p.FarmLocation,
		}},
	}

	if p.Farmer != "" {
		b.Farmer = &p.Farmer
	}

	if p.FarmLocation != "" {
		b.FarmLocation = &p.FarmLocation
	}

	if p.Price != "" {
		b.Price = &p.Price
	}

	if p.Notes != "" {
		b.Notes = &p.Notes
	}

	if err := w.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("registering batch: %w", err)
	}

	w.publish(ctx, ChannelSystem, EventBatchUploaded, eventPayload{Batch: b})

	return b, nil
}

// VerifyQuality records the distributor's quality verification and pickup,
// moving the batch from StatusPendingVerification to StatusInTransit.
func (w *Workflow) VerifyQuality(ctx context.Context, id uuid.UUID, verifier, note string) (*Batch, error) {
	if note == "" {
		note = "Quality verified and picked up by distributor."
	}

	return w.advance(ctx, id, StatusPendingVerification, StatusInTransit, note, actorOrDefault(verifier, "Distributor"), "")
}

// MarkInTransit appends a transport progress update for a batch already on
// the road. It does not change status; it exists so location pings land in
// the audit trail.
func (w *Workflow) MarkInTransit(ctx context.Context, id uuid.UUID, actor, location, note string) (*Batch, error) {
	b, err := w.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusInTransit {
		return nil, ErrInvalidState
	}

	if note == "" {
		note = "Transport progress update."
	}

	w.append(b, StatusInTransit.Label(), note, actorOrDefault(actor, "Distributor"), location)

	if err := w.save(ctx, b, StatusInTransit); err != nil {
		return nil, err
	}

	w.publish(ctx, ChannelDistributor, EventBatchUpdated, eventPayload{Batch: b})

	return b, nil
}

// MarkDelivered records arrival at the retail partner.
func (w *Workflow) MarkDelivered(ctx context.Context, id uuid.UUID, actor, note string) (*Batch, error) {
	if note == "" {
		note = "Delivered to retail partner."
	}

	return w.advance(ctx, id, StatusInTransit, StatusDelivered, note, actorOrDefault(actor, "Distributor"), "")
}

// PublishForSale moves a delivered batch onto the shelf, optionally setting
// the retail price.
func (w *Workflow) PublishForSale(ctx context.Context, id uuid.UUID, actor, price, note string) (*Batch, error) {
	b, err := w.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusDelivered {
		return nil, ErrInvalidState
	}

	if price != "" {
		b.Price = &price
	}

	if note == "" {
		note = "Quality approved, now available for consumers."
	}

	b.Status = StatusReadyForSale
	w.append(b, StatusReadyForSale.Label(), note, actorOrDefault(actor, "Retailer"), "")

	if err := w.save(ctx, b, StatusDelivered); err != nil {
		return nil, err
	}

	w.publish(ctx, ChannelDistributor, EventBatchUpdated, eventPayload{Batch: b})

	return b, nil
}

// UpdatePrice changes the retail price of a batch that is on sale. The batch
// stays in StatusReadyForSale; the change is audited with old and new values.
func (w *Workflow) UpdatePrice(ctx context.Context, id uuid.UUID, actor, newPrice string) (*Batch, error) {
	if newPrice == "" {
		return nil, invalidf("price", "required")
	}

	b, err := w.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusReadyForSale {
		return nil, ErrInvalidState
	}

	oldPrice := "unset"
	if b.Price != nil {
		oldPrice = *b.Price
	}

	b.Price = &newPrice
	w.append(b, StatusReadyForSale.Label(),
		fmt.Sprintf("Retail price changed from %s to %s.", oldPrice, newPrice),
		actorOrDefault(actor, "Retailer"), "")

	if err := w.save(ctx, b, StatusReadyForSale); err != nil {
		return nil, err
	}

	w.publish(ctx, ChannelDistributor, EventBatchUpdated, eventPayload{Batch: b})

	return b, nil
}

// MarkSold closes out the batch. Sold is terminal.
func (w *Workflow) MarkSold(ctx context.Context, id uuid.UUID, actor, note string) (*Batch, error) {
	if note == "" {
		note = "Sold to consumer."
	}

	return w.advance(ctx, id, StatusReadyForSale, StatusSold, note, actorOrDefault(actor, "Retailer"), "")
}

// AttachSensorReading stores a field-condition snapshot on the batch and
// audits it. Readings are informational and accepted in any non-terminal
// state.
func (w *Workflow) AttachSensorReading(ctx context.Context, id uuid.UUID, r SensorReading) (*Batch, error) {
	b, err := w.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status.Terminal() {
		return nil, ErrInvalidState
	}

	if r.LastUpdate.IsZero() {
		r.LastUpdate = time.Now().UTC()
	}

	b.SensorData = &r
	w.append(b, "Sensor Reading",
		fmt.Sprintf("Field reading recorded: moisture %.0f%%, humidity %.0f%%, temperature %.1f°C.",
			r.SoilMoisture, r.Humidity, r.Temperature),
		"Field Sensor", r.GPSCoordinates)

	if err := w.save(ctx, b, b.Status); err != nil {
		return nil, err
	}

	w.publish(ctx, ChannelSystem, EventBatchUpdated, eventPayload{Batch: b})

	return b, nil
}

// Get returns a batch by id.
func (w *Workflow) Get(ctx context.Context, id uuid.UUID) (*Batch, error) {
	return w.repo.Get(ctx, id)
}

// GetByLotNumber returns a batch by lot number; this is the consumer QR
// lookup path.
func (w *Workflow) GetByLotNumber(ctx context.Context, lotNumber string) (*Batch, error) {
	return w.repo.GetByLotNumber(ctx, lotNumber)
}

// List returns all batches, most recently updated first.
func (w *Workflow) List(ctx context.Context) ([]*Batch, error) {
	return w.repo.List(ctx)
}

// advance performs a plain status transition with a single audit entry and a
// batch-updated publish.
func (w *Workflow) advance(ctx context.Context, id uuid.UUID, from, to Status, note, actor, location string) (*Batch, error) {
	b, err := w.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status != from {
		return nil, ErrInvalidState
	}

	b.Status = to
	w.append(b, to.Label(), note, actor, location)

	if err := w.save(ctx, b, from); err != nil {
		return nil, err
	}

	w.publish(ctx, ChannelDistributor, EventBatchUpdated, eventPayload{Batch: b})

	return b, nil
}

func (w *Workflow) append(b *Batch, status, note, actor, location string) {
	now := time.Now().UTC()
	b.UpdatedAt = now
	b.TrackingHistory = append(b.TrackingHistory, AuditEntry{
		Timestamp: now,
		Status:    status,
		Note:      note,
		Actor:     actor,
		Location:  location,
	})
}

func (w *Workflow) save(ctx context.Context, b *Batch, expected Status) error {
	err := w.repo.Update(ctx, b, expected)
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrStaleStatus) {
		return ErrInvalidState
	}

	return err
}

// publish is the best-effort post-commit phase: failures are logged and
// never surfaced to the caller of the transition.
func (w *Workflow) publish(ctx context.Context, channel, event string, payload any) {
	if err := w.pub.Publish(ctx, channel, event, payload); err != nil {
		slog.Error("publish failed", "channel", channel, "event", event, "error", err)
	}
}

type eventPayload struct {
	Batch *Batch `json:"batch"`
}

type confirmPayload struct {
	Batch             *Batch  `json:"batch"`
	FarmerName        string  `json:"farmerName"`
	QuantityConfirmed float64 `json:"quantityConfirmed"`
	OriginalQuantity  float64 `json:"originalQuantity"`
}

type messagePayload struct {
	Batch   *Batch `json:"batch"`
	Message string `json:"message"`
}

func provisionalLotNumber() string {
	return fmt.Sprintf("LOT-%05d", rand.IntN(100000))
}

func registeredLotNumber(now time.Time) string {
	return fmt.Sprintf("LOT-%d-%05d", now.Year(), rand.IntN(100000))
}

func appendNote(b *Batch, note string) {
	if b.Notes == nil || *b.Notes == "" {
		b.Notes = &note
		return
	}

	joined := *b.Notes + "\n" + note
	b.Notes = &joined
}

func actorOf(name *string, fallback string) string {
	if name != nil && *name != "" {
		return *name
	}

	return fallback
}

func actorOrDefault(name, fallback string) string {
	if name != "" {
		return name
	}

	return fallback
}

func trimUnit(w string) string {
	return strings.TrimSuffix(w, " kg")
}

func locationOf(b *Batch) string {
	if b.FarmLocation != nil && *b.FarmLocation != "" {
		return *b.FarmLocation
	}

	return "Farm Location"
}
