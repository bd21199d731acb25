package captions

import (
	"context"
	"fmt"
	"strings"
)

// Request is one caption-generation job: a photo plus the inspection
// identity and the audio context extracted around its timestamp.
type Request struct {
	PhotoID          string
	Client           string
	Address          string
	ClaimNumber      string
	AudioTimestampMs int64
	AudioContext     string
}

// Generator produces one caption per request. Implementations call an
// external language service; the pipeline isolates their failures.
type Generator interface {
	Generate(ctx context.Context, req Request) (caption string, confidence float64, err error)
}

const systemPrompt = `You are a field-inspection assistant writing photo captions.
Write ONE short professional caption (at most 100 characters) describing what
the inspector most likely photographed, based on what they were saying at that
moment. Plain text only, no quotes, no markdown.`

func buildUserPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Inspection:\n")
	fmt.Fprintf(&b, "- client: %s\n", req.Client)
	fmt.Fprintf(&b, "- address: %s\n", req.Address)
	fmt.Fprintf(&b, "- claim: %s\n", req.ClaimNumber)
	fmt.Fprintf(&b, "Photo taken at %s into the recording.\n", FormatAudioTimestamp(req.AudioTimestampMs))
	if req.AudioContext != "" {
		fmt.Fprintf(&b, "Inspector was saying: %q\n", req.AudioContext)
	} else {
		b.WriteString("No speech was recorded near this photo.\n")
	}
	b.WriteString("Caption:")
	return b.String()
}

// FormatAudioTimestamp renders a recording-relative timestamp as mm:ss
// (or h:mm:ss past the hour) for prompts and display.
func FormatAudioTimestamp(ms int64) string {
	totalSec := ms / 1000
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
