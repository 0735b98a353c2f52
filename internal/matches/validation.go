package matches

import "time"

// ResolutionVerdict captures the resolution review outcome for an opportunity's two markets.
type ResolutionVerdict struct {
	ValidResolution  bool      `json:"ValidResolution"`
	ResolutionReason string    `json:"ResolutionReason"`
	Cached           bool      `json:"cached,omitempty"`
	CheckedAt        time.Time `json:"checked_at"`
}

// NewResolutionVerdict builds a verdict stamped with the current time.
func NewResolutionVerdict(valid bool, reason string, cached bool) *ResolutionVerdict {
	return &ResolutionVerdict{
		ValidResolution:  valid,
		ResolutionReason: reason,
		Cached:           cached,
		CheckedAt:        time.Now().UTC(),
	}
}
