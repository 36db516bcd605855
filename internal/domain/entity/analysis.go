package entity

import (
	"encoding/json"
	"strings"
)

// StatusSuccess is the only status an analysis ever reports.
const StatusSuccess = "success"

// AnalysisRequest is what the glasses POST to /analyze.
type AnalysisRequest struct {
	Image string `json:"image"`

	// Timestamp and DeviceID are passed through untouched. The firmware sends
	// a number and a string, but any JSON value is accepted.
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	DeviceID  json.RawMessage `json:"device_id,omitempty"`
}

// DeviceLabel renders the device id the way it appears in logs and file names.
func (r AnalysisRequest) DeviceLabel() string {
	return RawText(r.DeviceID)
}

// TimestampLabel renders the client timestamp the way it appears in logs and file names.
func (r AnalysisRequest) TimestampLabel() string {
	return RawText(r.Timestamp)
}

// DetectionItem is one simulated recognition, used for both faces and objects.
type DetectionItem struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// AnalysisResponse is the synthesized result returned to the device.
type AnalysisResponse struct {
	Status          string          `json:"status"`
	Timestamp       int64           `json:"timestamp"` // server time, epoch ms
	DeviceID        json.RawMessage `json:"device_id,omitempty"`
	ProcessingTime  int             `json:"processing_time"` // ms, descriptive only
	RecognizedFaces []DetectionItem `json:"recognized_faces"`
	UnknownFaces    int             `json:"unknown_faces"`
	Objects         []DetectionItem `json:"objects"`
	Context         *string         `json:"context"`
}

// RawText converts a pass-through JSON value into plain text: strings are
// unquoted, everything else keeps its literal JSON form, absent values become
// "undefined" to match what older servers wrote into file names.
func RawText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "undefined"
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return s
		}
	}
	return trimmed
}
