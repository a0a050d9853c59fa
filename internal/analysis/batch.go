package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds batch concurrency when none is given.
const DefaultWorkers = 2

// BatchResult is the outcome for one ticker of a batch.
type BatchResult struct {
	Symbol string  `json:"symbol"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
	Err    error   `json:"-"`
}

// RunBatch analyzes symbols with at most workers running at once. Results
// are in input order. One ticker failing never cancels the others.
func (s *Service) RunBatch(ctx context.Context, symbols []string, workers int) []BatchResult {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]BatchResult, len(symbols))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, sym := range symbols {
		g.Go(func() error {
			res := BatchResult{Symbol: sym}
			report, err := s.Run(ctx, sym)
			if err != nil {
				res.Err = err
				res.Error = err.Error()
			} else {
				res.Report = &report
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}
