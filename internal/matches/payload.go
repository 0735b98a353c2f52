package matches

import (
	"time"
)

// Payload is the envelope the scanner publishes per opportunity and the
// opportunity worker consumes.
type Payload struct {
	Version           int                `json:"version"`
	ScanID            string             `json:"scan_id"`
	Key               string             `json:"key"`
	DetectedAt        time.Time          `json:"detected_at"`
	Opportunity       Opportunity        `json:"opportunity"`
	ResolutionVerdict *ResolutionVerdict `json:"resolution_verdict,omitempty"`
}

const payloadVersion = 1

// NewPayload wraps an opportunity detected in scan scanID.
func NewPayload(scanID string, opp Opportunity, detectedAt time.Time) Payload {
	return Payload{
		Version:     payloadVersion,
		ScanID:      scanID,
		Key:         HashStrings(opp.Key()),
		DetectedAt:  detectedAt.UTC(),
		Opportunity: opp,
	}
}
