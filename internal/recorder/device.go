// Package recorder owns the lifecycle of one continuous audio capture and
// is the authority for elapsed recording time, the coordinate space all
// photo timestamps are expressed in.
package recorder

import "context"

// RecordingHandle finalizes an in-progress device recording.
type RecordingHandle interface {
	// Stop finalizes the capture and returns the local URI of the audio
	// artifact. A recording stopped mid-flight still returns a usable
	// (possibly shorter) artifact when data had accumulated.
	Stop(ctx context.Context) (string, error)
}

// CaptureDevice is the opaque camera/microphone collaborator. The session
// owns only elapsed-time bookkeeping; device access and permission prompts
// live behind this interface.
type CaptureDevice interface {
	// RequestPermission asks for microphone/camera access.
	RequestPermission(ctx context.Context) (bool, error)

	// StartRecording begins an audio capture.
	StartRecording(ctx context.Context) (RecordingHandle, error)

	// CapturePhoto takes a photograph and returns the device's temporary
	// file location.
	CapturePhoto(ctx context.Context) (string, error)
}

// FileMover relocates a capture device's temporary file into the app's
// durable storage area. A move failure aborts the capture flow; the file
// is never silently dropped.
type FileMover interface {
	Move(src string) (string, error)
}
