package fetch

import (
	"context"

	"github.com/samvad-hq/samvad-json-relay/internal/domain"
	"golang.org/x/sync/errgroup"
)

// BatchFetch issues one GET per URL concurrently and returns the parsed
// bodies in input order.
//
// The result is all-or-nothing. The first failure cancels the context seen by
// the remaining requests, BatchFetch waits for every request to return, and
// then reports that failure; results that did complete are discarded. An
// empty input yields an empty slice without issuing any request.
func (f *Fetcher) BatchFetch(ctx context.Context, urls []string) ([]domain.Result, error) {
	results := make([]domain.Result, len(urls))
	if len(urls) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			res, err := f.Get(gctx, url)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
