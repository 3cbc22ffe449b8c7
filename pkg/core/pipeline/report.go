package pipeline

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"
)

// Outcome classifies what happened to one item of a run.
type Outcome string

const (
	OutcomeStored           Outcome = "stored"            // record upserted
	OutcomeNoData           Outcome = "no_data"           // provider had no filings
	OutcomeFetchFailed      Outcome = "fetch_failed"      // request, status or decode failure
	OutcomeStoreFailed      Outcome = "store_failed"      // database write failed
	OutcomeGenerated        Outcome = "generated"         // recommendation text stored
	OutcomeGenerationFailed Outcome = "generation_failed" // error-marked text stored
)

// ItemResult is the outcome for one symbol or record.
type ItemResult struct {
	Symbol    string
	CompanyID int64
	Outcome   Outcome
	Err       error
}

// Report summarizes one pipeline run. Items are in input order.
type Report struct {
	RunID      string
	Stage      string
	StartedAt  time.Time
	FinishedAt time.Time
	Items      []ItemResult
}

// Count returns how many items ended with outcome o.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, it := range r.Items {
		if it.Outcome == o {
			n++
		}
	}
	return n
}

// Written returns how many items produced a row.
func (r Report) Written() int {
	return r.Count(OutcomeStored) + r.Count(OutcomeGenerated) + r.Count(OutcomeGenerationFailed)
}

// Failed returns the items that did not produce the intended row.
func (r Report) Failed() []ItemResult {
	var out []ItemResult
	for _, it := range r.Items {
		switch it.Outcome {
		case OutcomeStored, OutcomeGenerated:
		default:
			out = append(out, it)
		}
	}
	return out
}

// Log writes the run summary.
func (r Report) Log(logger arbor.ILogger) {
	logger.Info().
		Str("stage", r.Stage).
		Int("items", len(r.Items)).
		Int("written", r.Written()).
		Int("no_data", r.Count(OutcomeNoData)).
		Int("fetch_failed", r.Count(OutcomeFetchFailed)).
		Int("store_failed", r.Count(OutcomeStoreFailed)).
		Int("generation_failed", r.Count(OutcomeGenerationFailed)).
		Dur("elapsed", r.FinishedAt.Sub(r.StartedAt)).
		Msg("Run complete")
}

// forEach calls fn for every index with at most workers in flight. fn owns its
// own failure handling; one item never cancels another. With one worker the
// items run strictly in order.
func forEach(ctx context.Context, workers, n int, fn func(ctx context.Context, i int)) {
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}
