package handler

import (
	"strings"

	dErrors "supplytrack/pkg/domain-errors"
)

// Request DTOs keep the original wire field names (camelCase) stable for
// existing clients.

type createProductRequest struct {
	Name            string `json:"name"`
	Origin          string `json:"origin"`
	InitialLocation string `json:"initialLocation"`
}

func (r *createProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(r.Origin) == "" {
		return dErrors.New(dErrors.CodeValidation, "origin is required")
	}
	if strings.TrimSpace(r.InitialLocation) == "" {
		return dErrors.New(dErrors.CodeValidation, "initialLocation is required")
	}
	return nil
}

type logEventRequest struct {
	EventType        string `json:"eventType"`
	EventDescription string `json:"eventDescription"`
	Location         string `json:"location"`
}

func (r *logEventRequest) Validate() error {
	if strings.TrimSpace(r.EventType) == "" {
		return dErrors.New(dErrors.CodeValidation, "eventType is required")
	}
	return nil
}

type handoverRequest struct {
	NewOwnerUserID      string `json:"newOwnerUserId"`
	HandoverLocation    string `json:"handoverLocation"`
	HandoverDescription string `json:"handoverDescription"`
}

func (r *handoverRequest) Validate() error {
	if strings.TrimSpace(r.NewOwnerUserID) == "" {
		return dErrors.New(dErrors.CodeValidation, "newOwnerUserId is required")
	}
	return nil
}
