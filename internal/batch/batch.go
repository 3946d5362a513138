package batch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a produce batch.
type Status string

const (
	// StatusRequested is a retailer-initiated order awaiting the retailer's
	// own confirmation via the token issued at placement.
	StatusRequested Status = "requested_by_retailer"
	// StatusAwaitingFarmer is a confirmed order waiting for a farmer to
	// claim and fulfil it.
	StatusAwaitingFarmer Status = "awaiting_farmer_confirmation"
	StatusProcessing     Status = "processing"
	// StatusPendingVerification is the entry state of the farmer
	// direct-upload path.
	StatusPendingVerification Status = "pending_verification"
	StatusInTransit           Status = "in_transit"
	StatusDelivered           Status = "delivered"
	StatusReadyForSale        Status = "ready_for_sale"
	StatusSold                Status = "sold"
	StatusRejected            Status = "rejected"
)

// Label returns the human-readable form of the status as written into
// persisted audit entries. Dashboard display strings are the UI's concern,
// but the audit trail is data and keeps these labels forever.
func (s Status) Label() string {
	switch s {
	case StatusRequested:
		return "Requested by Retailer"
	case StatusAwaitingFarmer:
		return "Awaiting Farmer Confirmation"
	case StatusProcessing:
		return "Processing"
	case StatusPendingVerification:
		return "Pending Verification"
	case StatusInTransit:
		return "In Transit"
	case StatusDelivered:
		return "Delivered"
	case StatusReadyForSale:
		return "Ready for Sale"
	case StatusSold:
		return "Sold"
	case StatusRejected:
		return "Rejected"
	}

	return string(s)
}

// Terminal reports whether no further transitions are accepted from s.
func (s Status) Terminal() bool {
	return s == StatusSold || s == StatusRejected
}

// Grade is the quality grade assigned to a batch at harvest or ordering time.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
)

// ParseGrade normalizes free-form grade input ("a", "Grade A+", " B ") to a
// known Grade.
func ParseGrade(s string) (Grade, bool) {
	g := strings.ToUpper(strings.TrimSpace(s))
	g = strings.TrimPrefix(g, "GRADE")
	g = strings.TrimSpace(g)

	switch Grade(g) {
	case GradeAPlus, GradeA, GradeB, GradeC:
		return Grade(g), true
	}

	return "", false
}

// AuditEntry is one immutable record in a batch's tracking history.
// Status holds either the label of the status transitioned into or a
// sub-event label such as "Order Request Placed".
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	Actor     string    `json:"updatedBy"`
	Location  string    `json:"location,omitempty"`
}

// SensorReading is an informational field-condition snapshot attached to a
// batch. It never gates transitions.
type SensorReading struct {
	SoilMoisture   float64   `json:"soilMoisture"`
	Humidity       float64   `json:"humidity"`
	Temperature    float64   `json:"temperature"`
	GPSCoordinates string    `json:"gpsCoordinates"`
	LastUpdate     time.Time `json:"lastUpdate"`
}

// Batch represents one produce lot moving through the supply chain.
// It is mutated exclusively through Workflow transitions; every mutation
// appends exactly one AuditEntry and refreshes UpdatedAt.
type Batch struct {
	ID                uuid.UUID
	LotNumber         *string
	ConfirmationToken *string
	Crop              string
	Quality           Grade
	Weight            string // display form, e.g. "100 kg"
	Price             *string
	Farmer            *string
	Retailer          *string
	RetailerContact   *string
	HarvestDate       string
	FarmLocation      *string
	Status            Status
	TrackingHistory   []AuditEntry
	SensorData        *SensorReading
	Notes             *string
	TrackURL          *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ParseKilograms extracts the numeric quantity from a weight string such as
// "100 kg" or "82.5kg".
func ParseKilograms(w string) (float64, error) {
	s := strings.TrimSpace(w)
	s = strings.TrimSuffix(s, "kg")
	s = strings.TrimSuffix(s, "Kg")
	s = strings.TrimSpace(s)

	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing weight %q: %w", w, err)
	}

	return q, nil
}

// FormatKilograms renders a quantity in the canonical stored form, "100 kg".
func FormatKilograms(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64) + " kg"
}
