package captions

import (
	"testing"

	"github.com/dmitrijs2005/sitescribe/internal/models"
	"github.com/stretchr/testify/assert"
)

func seg(start, end int64, text string) models.TranscriptSegment {
	return models.TranscriptSegment{StartMs: start, EndMs: end, Text: text, Confidence: 0.9}
}

func TestContextFor(t *testing.T) {
	segments := []models.TranscriptSegment{
		seg(0, 2000, "a"),
		seg(5000, 7000, "b"),
		seg(9000, 11000, "c"),
	}

	tests := []struct {
		name        string
		timestampMs int64
		windowMs    int64
		want        string
	}{
		{
			name:        "only the segment overlapping the window",
			timestampMs: 6000,
			windowMs:    3000,
			want:        "b",
		},
		{
			name:        "boundary inclusive on segment end",
			timestampMs: 5000,
			windowMs:    3000,
			want:        "a b", // a ends at 2000 = 5000-3000
		},
		{
			name:        "wider window pulls in neighbours",
			timestampMs: 6000,
			windowMs:    5000,
			want:        "a b c",
		},
		{
			name:        "no segment near the timestamp",
			timestampMs: 30000,
			windowMs:    3000,
			want:        "",
		},
		{
			name:        "empty segment list",
			timestampMs: 1000,
			windowMs:    3000,
			want:        "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var segs []models.TranscriptSegment
			if tc.name != "empty segment list" {
				segs = segments
			}
			got := ContextFor(segs, tc.timestampMs, tc.windowMs)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestContextFor_ConcatenatesInSegmentOrder(t *testing.T) {
	segments := []models.TranscriptSegment{
		seg(1000, 2000, "first the roof"),
		seg(2000, 3000, "then the gutters"),
	}
	got := ContextFor(segments, 2000, 3000)
	assert.Equal(t, "first the roof then the gutters", got)
}
