package handler

import (
	"sitewatch/internal/alert"
	"sitewatch/internal/compliance"
	"sitewatch/internal/compliance/processor"
)

// HazardResultResponse is the HTTP response for POST /compliance/hazard-signals.
type HazardResultResponse struct {
	Alert *alert.SafetyAlert `json:"alert,omitempty"`
	Event *compliance.Event  `json:"event,omitempty"`
}

// FromHazardResult converts a processor result to an HTTP response.
func FromHazardResult(result processor.HazardResult) HazardResultResponse {
	resp := HazardResultResponse{Event: result.Event}
	if result.Alert.Raised {
		a := result.Alert.Alert
		resp.Alert = &a
	}
	return resp
}
