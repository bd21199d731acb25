// Package captions turns transcript context into per-photo captions: it
// selects the transcript segments near a photo's audio timestamp and
// drives a rate-limited batch of caption-generation requests.
package captions

import (
	"strings"

	"github.com/dmitrijs2005/sitescribe/internal/models"
)

// Context window defaults, in milliseconds. The batch pipeline uses the
// tighter window; ad-hoc lookups get a wider one.
const (
	DefaultBatchWindowMs  = 3000
	DefaultLookupWindowMs = 5000
)

// ContextFor returns the concatenated text of every segment whose start
// or end lies within windowMs of timestampMs. The window is symmetric.
// An empty string means no speech was near the photo; callers treat that
// as valid, low-information input, never as a failure.
func ContextFor(segments []models.TranscriptSegment, timestampMs, windowMs int64) string {
	lo := timestampMs - windowMs
	hi := timestampMs + windowMs

	var parts []string
	for _, s := range segments {
		startIn := s.StartMs >= lo && s.StartMs <= hi
		endIn := s.EndMs >= lo && s.EndMs <= hi
		if startIn || endIn {
			parts = append(parts, s.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
