package captions

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/sitescribe/internal/clock"
	"github.com/dmitrijs2005/sitescribe/internal/logging"
	"github.com/dmitrijs2005/sitescribe/internal/models"
)

const (
	// DefaultBatchSize bounds concurrent caption requests; the pipeline
	// waits for a whole batch to settle before issuing the next.
	DefaultBatchSize = 3

	// DefaultCooldown is the pause between batches, protecting the
	// caption service's quota.
	DefaultCooldown = 1000 * time.Millisecond

	// FailedCaptionSentinel substitutes for an individual failed request
	// so one bad item never aborts the rest of the batch.
	FailedCaptionSentinel = "Caption generation failed"
)

// Pipeline drives N caption requests with bounded concurrency,
// rate-limited batches, and per-item failure isolation. Output is always
// index-aligned with input.
type Pipeline struct {
	gen       Generator
	clk       clock.Clock
	log       logging.Logger
	batchSize int
	cooldown  time.Duration
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

func WithBatchSize(n int) PipelineOption {
	return func(p *Pipeline) { p.batchSize = n }
}

func WithCooldown(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.cooldown = d }
}

func NewPipeline(gen Generator, clk clock.Clock, log logging.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		gen:       gen,
		clk:       clk,
		log:       log,
		batchSize: DefaultBatchSize,
		cooldown:  DefaultCooldown,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes all requests in batches of batchSize. Each batch runs
// concurrently and fully settles (successes and failures alike) before
// the cool-down and the next batch. A cancelled context lets the current
// batch finish, then fills the remaining slots with sentinels.
func (p *Pipeline) Run(ctx context.Context, reqs []Request) []models.CaptionResult {
	results := make([]models.CaptionResult, len(reqs))

	for start := 0; start < len(reqs); start += p.batchSize {
		end := min(start+p.batchSize, len(reqs))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = p.generateOne(ctx, reqs[i])
			}(i)
		}
		wg.Wait()

		if end >= len(reqs) {
			break
		}
		if err := p.clk.Sleep(ctx, p.cooldown); err != nil {
			p.log.Warn(ctx, "caption run cancelled, remaining photos get sentinels",
				"completed", end, "total", len(reqs))
			for i := end; i < len(reqs); i++ {
				results[i] = sentinelResult(reqs[i], p.clk.Now())
			}
			return results
		}
	}

	return results
}

func (p *Pipeline) generateOne(ctx context.Context, req Request) models.CaptionResult {
	caption, confidence, err := p.gen.Generate(ctx, req)
	if err != nil {
		p.log.Warn(ctx, "caption generation failed", "photo_id", req.PhotoID, "error", err)
		return sentinelResult(req, p.clk.Now())
	}
	return models.CaptionResult{
		PhotoID:     req.PhotoID,
		Caption:     caption,
		Confidence:  confidence,
		Context:     req.AudioContext,
		GeneratedAt: p.clk.Now(),
	}
}

func sentinelResult(req Request, now time.Time) models.CaptionResult {
	return models.CaptionResult{
		PhotoID:     req.PhotoID,
		Caption:     FailedCaptionSentinel,
		Confidence:  0,
		Context:     req.AudioContext,
		GeneratedAt: now,
	}
}
