package session

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of postings a Batch scans at once.
const DefaultConcurrency = 4

// Posting is one text handed to a Batch.
type Posting struct {
	// Name identifies the posting in output, usually its file path.
	Name string

	// Text is the posting text.
	Text string
}

// BatchResult is the outcome of one posting. Exactly one of Outcome and
// Err is set.
type BatchResult struct {
	Posting Posting
	Outcome *Outcome
	Err     error
}

// Batch scans several postings concurrently. Each posting gets its own
// Controller, so the one-scan-in-flight rule holds per posting.
type Batch struct {
	newController func() *Controller
	concurrency   int
	logger        *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithConcurrency sets the maximum number of concurrent scans.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets the logger for batch-level events.
func WithBatchLogger(l *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = l
	}
}

// NewBatch creates a Batch. newController is called once per posting.
func NewBatch(newController func() *Controller, opts ...BatchOption) *Batch {
	b := &Batch{
		newController: newController,
		concurrency:   DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	return b
}

// Run scans every posting and returns the results in input order.
// A failed posting does not stop the others; only the end of ctx makes Run
// return an error. Postings not started before then have a nil Outcome and
// the error Run returns (context.Canceled or context.DeadlineExceeded).
func (b *Batch) Run(ctx context.Context, postings []Posting) ([]BatchResult, error) {
	results := make([]BatchResult, len(postings))
	finished := make([]bool, len(postings))

	err := b.run(ctx, postings, func(r BatchResult, i int) {
		results[i] = r
		finished[i] = true
	})
	for i, p := range postings {
		if !finished[i] {
			results[i] = BatchResult{Posting: p, Err: err}
		}
	}
	return results, err
}

// Concurrency returns the effective number of concurrent scans.
func (b *Batch) Concurrency() int {
	return b.concurrency
}

// RunWithCallback scans every posting and calls fn as each one finishes.
// fn runs on the scanning goroutine and must be safe for concurrent use.
func (b *Batch) RunWithCallback(ctx context.Context, postings []Posting, fn func(r BatchResult, index int)) error {
	return b.run(ctx, postings, fn)
}

func (b *Batch) run(ctx context.Context, postings []Posting, fn func(BatchResult, int)) error {
	b.logger.Info("starting batch", "postings", len(postings), "concurrency", b.concurrency)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, p := range postings {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcome, err := b.newController().Submit(gctx, p.Text)
			if err != nil {
				b.logger.Warn("scan failed", "posting", p.Name, "error", err)
			} else {
				b.logger.Debug("scan completed", "posting", p.Name, "tier", outcome.Tier.String())
			}
			// Index i is owned by this goroutine.
			fn(BatchResult{Posting: p, Outcome: outcome, Err: err}, i)
			return nil
		})
	}

	err := g.Wait()
	b.logger.Info("batch complete", "postings", len(postings), "elapsed", time.Since(start))
	if err == nil {
		err = ctx.Err()
	}
	return err
}
