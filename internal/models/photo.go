package models

import "time"

// Photo is one photograph captured during an inspection.
//
// AudioTimestampMs is the number of milliseconds elapsed in the recording
// session at the moment of capture. It is the correlation key between the
// photo and a point in the audio timeline; the wall-clock Timestamp is kept
// only for display. Photos are always sorted by AudioTimestampMs, never
// assumed to arrive in order.
type Photo struct {
	ID               string
	InspectionID     string
	PhotoURI         string // local image file
	RemoteURL        string // remote copy, empty until uploaded
	Timestamp        time.Time
	AudioTimestampMs int64
	Caption          string
	CreatedAt        time.Time
}
