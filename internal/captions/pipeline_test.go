package captions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sitescribe/internal/clock"
	"github.com/dmitrijs2005/sitescribe/internal/logging"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeGenerator struct {
	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
	failIdx     map[int]bool
}

func (g *fakeGenerator) Generate(_ context.Context, req Request) (string, float64, error) {
	g.mu.Lock()
	idx := g.calls
	g.calls++
	g.inFlight++
	if g.inFlight > g.maxInFlight {
		g.maxInFlight = g.inFlight
	}
	fail := g.failIdx[idx]
	g.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()

	if fail {
		return "", 0, errors.New("service unavailable")
	}
	return "caption for " + req.PhotoID, 0.9, nil
}

func makeRequests(n int) []Request {
	reqs := make([]Request, n)
	for i := range reqs {
		reqs[i] = Request{
			PhotoID:          fmt.Sprintf("photo-%d", i),
			AudioTimestampMs: int64(i * 1000),
			AudioContext:     fmt.Sprintf("context %d", i),
		}
	}
	return reqs
}

func TestPipelineRun_IndexAligned(t *testing.T) {
	gen := &fakeGenerator{failIdx: map[int]bool{}}
	p := NewPipeline(gen, &clock.Real{}, discardLogger(), WithCooldown(0))

	reqs := makeRequests(7)
	results := p.Run(context.Background(), reqs)

	require.Len(t, results, 7)
	for i, res := range results {
		assert.Equal(t, reqs[i].PhotoID, res.PhotoID)
		assert.Equal(t, "caption for "+reqs[i].PhotoID, res.Caption)
		assert.Equal(t, reqs[i].AudioContext, res.Context)
		assert.InDelta(t, 0.9, res.Confidence, 0.001)
		assert.False(t, res.GeneratedAt.IsZero())
	}
}

func TestPipelineRun_FailedItemGetsSentinel(t *testing.T) {
	gen := &fakeGenerator{failIdx: map[int]bool{3: true}}
	p := NewPipeline(gen, &clock.Real{}, discardLogger(), WithCooldown(0))

	reqs := makeRequests(7)
	results := p.Run(context.Background(), reqs)

	require.Len(t, results, 7)
	for i, res := range results {
		if i == 3 {
			assert.Equal(t, FailedCaptionSentinel, res.Caption)
			assert.Zero(t, res.Confidence)
			assert.Equal(t, reqs[i].PhotoID, res.PhotoID)
			continue
		}
		assert.NotEqual(t, FailedCaptionSentinel, res.Caption, "item %d", i)
	}
}

func TestPipelineRun_ConcurrencyBoundedByBatchSize(t *testing.T) {
	gen := &fakeGenerator{failIdx: map[int]bool{}}
	p := NewPipeline(gen, &clock.Real{}, discardLogger(), WithCooldown(0))

	results := p.Run(context.Background(), makeRequests(7))

	require.Len(t, results, 7)
	assert.Equal(t, 7, gen.calls)
	assert.LessOrEqual(t, gen.maxInFlight, DefaultBatchSize)
}

func TestPipelineRun_EmptyInput(t *testing.T) {
	gen := &fakeGenerator{failIdx: map[int]bool{}}
	p := NewPipeline(gen, &clock.Real{}, discardLogger())

	results := p.Run(context.Background(), nil)
	assert.Empty(t, results)
	assert.Zero(t, gen.calls)
}

func TestPipelineRun_CancelledContextFillsSentinels(t *testing.T) {
	gen := &fakeGenerator{failIdx: map[int]bool{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context lets the current batch finish, then the
	// remaining items are filled with sentinels during the cool-down.
	p := NewPipeline(gen, &clock.Real{}, discardLogger(), WithCooldown(time.Minute))

	reqs := makeRequests(7)
	results := p.Run(ctx, reqs)

	require.Len(t, results, 7)
	assert.Equal(t, DefaultBatchSize, gen.calls)
	for i := DefaultBatchSize; i < len(results); i++ {
		assert.Equal(t, FailedCaptionSentinel, results[i].Caption)
		assert.Equal(t, reqs[i].PhotoID, results[i].PhotoID)
	}
}
