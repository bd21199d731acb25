// Package models defines the data model shared by the local evidence store,
// the sync queue and the analysis pipeline.
package models

import "time"

// InspectionStatus tracks the analysis lifecycle of an inspection.
// Transitions are monotonic (DRAFT -> PROCESSING -> READY) except that a
// failed inspection (ERROR) may be retried back into PROCESSING.
type InspectionStatus string

const (
	StatusDraft      InspectionStatus = "DRAFT"
	StatusProcessing InspectionStatus = "PROCESSING"
	StatusReady      InspectionStatus = "READY"
	StatusError      InspectionStatus = "ERROR"
)

// Inspection is one field inspection: a single continuous audio recording
// plus any number of photos taken while it ran. The identifier is assigned
// once and shared by the local and remote representations.
type Inspection struct {
	ID             string
	Client         string
	Address        string
	ClaimNumber    string
	InspectionDate time.Time
	AudioURI       string // local audio file, empty until a recording finishes
	RemoteAudioURL string // remote copy, empty until the sync queue uploads it
	Status         InspectionStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
