// Package transcribe converts one finished audio recording into a
// time-aligned transcript using a Whisper-style speech-to-text service.
package transcribe

import (
	"context"

	"github.com/dmitrijs2005/sitescribe/internal/models"
)

// Transcriber produces a transcript from an audio location (a remote URL
// or a local file path).
type Transcriber interface {
	Transcribe(ctx context.Context, audioLocation string) (*models.Transcript, error)
}
