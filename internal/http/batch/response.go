package batch

import (
	"time"

	"github.com/google/uuid"

	"github.com/harvesttrail/harvesttrail/internal/batch"
)

type auditEntryResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	UpdatedBy string    `json:"updatedBy"`
	Location  string    `json:"location,omitempty"`
}

type sensorResponse struct {
	SoilMoisture   float64   `json:"soilMoisture"`
	Humidity       float64   `json:"humidity"`
	Temperature    float64   `json:"temperature"`
	GPSCoordinates string    `json:"gpsCoordinates"`
	LastUpdate     time.Time `json:"lastUpdate"`
}

type batchResponse struct {
	ID              uuid.UUID            `json:"id"`
	LotNumber       *string              `json:"lotNumber"`
	Crop            string               `json:"crop"`
	Quality         batch.Grade          `json:"quality"`
	Weight          string               `json:"weight"`
	Price           *string              `json:"price,omitempty"`
	Farmer          *string              `json:"farmer"`
	Retailer        *string              `json:"retailer,omitempty"`
	RetailerContact *string              `json:"retailerContact,omitempty"`
	HarvestDate     string               `json:"harvestDate"`
	FarmLocation    *string              `json:"farmLocation,omitempty"`
	Status          batch.Status         `json:"status"`
	TrackingHistory []auditEntryResponse `json:"trackingHistory"`
	SensorData      *sensorResponse      `json:"sensorData,omitempty"`
	Notes           *string              `json:"notes,omitempty"`
	TrackURL        *string              `json:"trackUrl,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func toResponse(b *batch.Batch) batchResponse {
	resp := batchResponse{
		ID:              b.ID,
		LotNumber:       b.LotNumber,
		Crop:            b.Crop,
		Quality:         b.Quality,
		Weight:          b.Weight,
		Price:           b.Price,
		Farmer:          b.Farmer,
		Retailer:        b.Retailer,
		RetailerContact: b.RetailerContact,
		HarvestDate:     b.HarvestDate,
		FarmLocation:    b.FarmLocation,
		Status:          b.Status,
		Notes:           b.Notes,
		TrackURL:        b.TrackURL,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	resp.TrackingHistory = make([]auditEntryResponse, len(b.TrackingHistory))
	for i, e := range b.TrackingHistory {
		resp.TrackingHistory[i] = auditEntryResponse{
			Timestamp: e.Timestamp,
			Status:    e.Status,
			Note:      e.Note,
			UpdatedBy: e.Actor,
			Location:  e.Location,
		}
	}

	if b.SensorData != nil {
		resp.SensorData = &sensorResponse{
			SoilMoisture:   b.SensorData.SoilMoisture,
			Humidity:       b.SensorData.Humidity,
			Temperature:    b.SensorData.Temperature,
			GPSCoordinates: b.SensorData.GPSCoordinates,
			LastUpdate:     b.SensorData.LastUpdate,
		}
	}

	return resp
}

func toResponseList(batches []*batch.Batch) []batchResponse {
	resp := make([]batchResponse, len(batches))
	for i, b := range batches {
		resp[i] = toResponse(b)
	}

	return resp
}
