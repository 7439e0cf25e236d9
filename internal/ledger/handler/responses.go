package handler

import (
	"time"

	"supplytrack/internal/ledger/models"
)

type productResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Origin          string    `json:"origin"`
	CurrentStatus   string    `json:"currentStatus"`
	CurrentLocation string    `json:"currentLocation"`
	OwnerUserID     string    `json:"ownerUserId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toProductResponse(p *models.Product) productResponse {
	return productResponse{
		ID:              p.ID.String(),
		Name:            p.Name,
		Origin:          p.Origin,
		CurrentStatus:   p.CurrentStatus,
		CurrentLocation: p.CurrentLocation,
		OwnerUserID:     p.OwnerUserID.String(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type eventResponse struct {
	ID          int64     `json:"id"`
	ProductID   string    `json:"productId"`
	EventType   string    `json:"eventType"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	ActorUserID string    `json:"actorUserId"`
	Timestamp   time.Time `json:"timestamp"`
}

func toEventResponse(e models.Event) eventResponse {
	return eventResponse{
		ID:          int64(e.ID),
		ProductID:   e.ProductID.String(),
		EventType:   e.EventType,
		Description: e.Description,
		Location:    e.Location,
		ActorUserID: e.ActorUserID.String(),
		Timestamp:   e.Timestamp,
	}
}

type traceResponse struct {
	Product      productResponse `json:"product"`
	EventHistory []eventResponse `json:"eventHistory"`
}

func toTraceResponse(t *models.Trace) traceResponse {
	events := make([]eventResponse, 0, len(t.Events))
	for _, e := range t.Events {
		events = append(events, toEventResponse(e))
	}
	return traceResponse{
		Product:      toProductResponse(t.Product),
		EventHistory: events,
	}
}
