package apimodel

import "time"

// PressStatus is the button state served by GET /api/press.
type PressStatus struct {
	Pressed      bool       `json:"pressed"`
	HeldMs       int64      `json:"held_ms"`
	Segment      uint64     `json:"segment"`
	Phase        string     `json:"phase"`
	Policy       string     `json:"policy"`
	ThresholdMs  int64      `json:"threshold_ms"`
	FireCount    int64      `json:"fire_count"`
	FailureCount int64      `json:"failure_count"`
	LastFire     *time.Time `json:"last_fire,omitempty"`
	DisplayText  string     `json:"display_text"`
}
