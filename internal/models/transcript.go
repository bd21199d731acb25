package models

import "time"

// TranscriptSegment is one time-aligned piece of transcribed speech.
// Boundaries are in milliseconds from the start of the recording. Segments
// are produced once per inspection, ordered by StartMs, and never mutated.
type TranscriptSegment struct {
	StartMs    int64
	EndMs      int64
	Text       string
	Confidence float64
}

// Transcript is the full result of transcribing one inspection recording.
type Transcript struct {
	FullText   string
	Segments   []TranscriptSegment
	Confidence float64
}

// CaptionResult is the outcome of one caption-generation request.
// A failed request still yields a result (the failure sentinel) so batch
// output stays index-aligned with its input.
type CaptionResult struct {
	PhotoID     string
	Caption     string
	Confidence  float64
	Context     string // the audio-context string the caption was generated from
	GeneratedAt time.Time
}
