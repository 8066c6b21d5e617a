package usage

import (
	"context"
	"sync"

	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
	"github.com/robinvandernoord/r2-d2/pkg/restic"
)

// reconcile drives the listing through a bounded worker pool and reduces
// the per-worker partial reports into one.
//
// A single lister goroutine pulls the store's observation sequence,
// suppresses duplicate keys and fans the rest out to workers. Listings
// arrive in key order, so a key lexicographically at or before the last
// forwarded one is a page-boundary repeat, not new data. Each worker
// accumulates into its own partial report; no counter is shared while the
// listing is in flight. The first error cancels everything, and no report
// is returned in that case.
func reconcile(ctx context.Context, store r2.Store, classifier *restic.Classifier, prefix string, workers int) (*Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	obsCh := make(chan r2.Observation, workers*2)

	var listErr error
	go func() {
		defer close(obsCh)

		it := store.List(ctx, prefix)
		lastKey := ""
		for it.Next() {
			obs := it.Object()

			if lastKey != "" && obs.Key <= lastKey {
				logger.Debug("suppressing repeated listing key", "key", obs.Key)
				continue
			}
			lastKey = obs.Key

			select {
			case obsCh <- obs:
			case <-ctx.Done():
				return
			}
		}
		listErr = it.Err()
	}()

	partials := make([]Report, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(part *Report) {
			defer wg.Done()

			for obs := range obsCh {
				role := classifier.Classify(obs.Key)
				switch role {
				case restic.RoleIgnored:
					logger.Debug("skipping ignored object", "key", obs.Key)
					continue
				case restic.RoleUnknown:
					fail(r2.NewUnclassifiedObjectError(obs.Key))
					return
				}

				part.Add(obs.Size, obs.Tier, role)
			}
		}(&partials[i])
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if listErr != nil {
		return nil, listErr
	}
	if err := ctx.Err(); err != nil {
		return nil, r2.NewCancelledError(err)
	}

	report := &Report{}
	for i := range partials {
		report.Merge(&partials[i])
	}
	return report, nil
}
