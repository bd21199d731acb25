package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/clock"
	"github.com/dmitrijs2005/sitescribe/internal/common"
	"github.com/dmitrijs2005/sitescribe/internal/logging"
)

// DefaultTickInterval is how often an active session reports progress.
// It is a policy knob for observers, not a correctness requirement:
// DurationMs is computed from the clock, not accumulated per tick.
const DefaultTickInterval = 1 * time.Second

// Session is the single logical owner of one audio recording. At most one
// recording is active at a time; starting a second without stopping the
// first is a caller error.
type Session struct {
	device CaptureDevice
	clk    clock.Clock
	log    logging.Logger
	tick   time.Duration

	// onTick, when set, receives the elapsed duration once per tick while
	// a recording is active.
	onTick func(elapsedMs int64)

	mu        sync.Mutex
	recording bool
	startedAt time.Time
	handle    RecordingHandle
	ticker    clock.Ticker
	done      chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithTickInterval overrides the progress tick interval.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) { s.tick = d }
}

// WithOnTick registers a progress observer.
func WithOnTick(fn func(elapsedMs int64)) Option {
	return func(s *Session) { s.onTick = fn }
}

func NewSession(device CaptureDevice, clk clock.Clock, log logging.Logger, opts ...Option) *Session {
	s := &Session{device: device, clk: clk, log: log, tick: DefaultTickInterval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start requests microphone access and begins accumulating elapsed time.
// Returns common.ErrPermissionDenied when access is not granted and
// common.ErrDeviceBusy when another recording is already active.
func (s *Session) Start(ctx context.Context) error {
	granted, err := s.device.RequestPermission(ctx)
	if err != nil {
		return err
	}
	if !granted {
		return common.ErrPermissionDenied
	}

	s.mu.Lock()
	if s.recording {
		s.mu.Unlock()
		return common.ErrDeviceBusy
	}
	s.mu.Unlock()

	handle, err := s.device.StartRecording(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.recording {
		// lost the race to a concurrent Start
		s.mu.Unlock()
		if _, stopErr := handle.Stop(ctx); stopErr != nil {
			s.log.Warn(ctx, "discarding extra recording failed", "error", stopErr)
		}
		return common.ErrDeviceBusy
	}
	s.recording = true
	s.startedAt = s.clk.Now()
	s.handle = handle
	s.done = make(chan struct{})
	s.ticker = s.clk.NewTicker(s.tick)
	go s.tickLoop(s.ticker, s.done)
	s.mu.Unlock()

	s.log.Info(ctx, "recording started")
	return nil
}

func (s *Session) tickLoop(t clock.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-t.C():
			if s.onTick != nil {
				s.onTick(s.DurationMs())
			}
		}
	}
}

// DurationMs returns the elapsed recording time in milliseconds, or zero
// when no recording is active. The read is serialized with state changes,
// so a photo is never stamped with a torn value.
func (s *Session) DurationMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return 0
	}
	return s.clk.Now().Sub(s.startedAt).Milliseconds()
}

// DurationMsIfRecording returns the elapsed recording time and whether a
// recording is active, read in one critical section. Photo stamping uses
// it so a Stop landing between an active check and the duration read can
// never produce a zero-stamped photo.
func (s *Session) DurationMsIfRecording() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return 0, false
	}
	return s.clk.Now().Sub(s.startedAt).Milliseconds(), true
}

// Recording reports whether a capture is active.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Stop finalizes the underlying capture and returns the local audio URI.
// Returns common.ErrNoActiveRecording when no session is active. The
// session resets to not-recording regardless of the finalize outcome, so
// a failed Stop never wedges the device.
func (s *Session) Stop(ctx context.Context) (string, error) {
	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		return "", common.ErrNoActiveRecording
	}
	handle := s.handle
	s.teardownLocked()
	s.mu.Unlock()

	uri, err := handle.Stop(ctx)
	if err != nil {
		return "", err
	}
	s.log.Info(ctx, "recording stopped", "uri", uri)
	return uri, nil
}

// Reset unconditionally tears down any active session. Errors from the
// in-progress stop are logged, never propagated.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		return
	}
	handle := s.handle
	s.teardownLocked()
	s.mu.Unlock()

	if _, err := handle.Stop(ctx); err != nil {
		s.log.Warn(ctx, "reset: stopping recording failed", "error", err)
	}
}

func (s *Session) teardownLocked() {
	s.recording = false
	s.handle = nil
	s.ticker.Stop()
	close(s.done)
}
