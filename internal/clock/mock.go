package clock

import (
	"context"
	"sync"
	"time"
)

// Mock is a manually advanced Clock for tests. Advance moves the current
// time forward and fires any tickers whose interval has elapsed.
type Mock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*mockTicker
}

func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) NewTicker(d time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &mockTicker{
		m:        m,
		ch:       make(chan time.Time, 1),
		interval: d,
		next:     m.now.Add(d),
	}
	m.tickers = append(m.tickers, t)
	return t
}

// Sleep on a Mock returns immediately: tests advancing a virtual clock do
// not want real delays, only the cancellation semantics.
func (m *Mock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	m.Advance(d)
	return nil
}

// Advance moves the clock forward by d, delivering due ticks. Ticks are
// delivered non-blocking; an unread pending tick is coalesced like the
// standard library ticker does.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	for _, t := range m.tickers {
		for !t.stopped && !t.next.After(m.now) {
			select {
			case t.ch <- t.next:
			default:
			}
			t.next = t.next.Add(t.interval)
		}
	}
}

type mockTicker struct {
	m        *Mock
	ch       chan time.Time
	interval time.Duration
	next     time.Time
	stopped  bool
}

func (t *mockTicker) C() <-chan time.Time { return t.ch }

func (t *mockTicker) Stop() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.stopped = true
}
