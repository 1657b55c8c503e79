package mirror

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pagemirror"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of assets fetched at once.
const DefaultConcurrency = 5

// AssetFetchFunc fetches the content of one asset.
type AssetFetchFunc func(ctx context.Context, asset *pagemirror.Asset) ([]byte, error)

// Scheduler downloads assets with bounded concurrency.
// A failing asset never cancels or delays its siblings.
type Scheduler struct {
	FS          pagemirror.FileSystem
	Concurrency int

	// RateLimiter, if set, is waited on per asset host before each fetch.
	RateLimiter pagemirror.DomainLimiter

	// Progress, if set, receives one event per asset as it finishes.
	Progress pagemirror.ProgressFunc
}

// scheduledResult holds the outcome of one asset and its input position.
type scheduledResult struct {
	position int
	outcome  *pagemirror.Outcome
}

// Run fetches every asset exactly once and writes successful downloads to
// dir/LocalFileName. It returns after all assets reach a terminal outcome;
// outcomes are in the same order as assets.
//
// Assets not yet started when ctx is canceled fail with the context error.
func (s *Scheduler) Run(ctx context.Context, assets []*pagemirror.Asset, dir string, fetch AssetFetchFunc) []*pagemirror.Outcome {
	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(assets)
	resultCh := make(chan scheduledResult, total)

	// Tasks never return errors, so the group only bounds concurrency and
	// provides the join barrier.
	var g errgroup.Group
	g.SetLimit(concurrency)

	go func() {
		for i, asset := range assets {
			g.Go(func() error {
				resultCh <- scheduledResult{
					position: i,
					outcome:  s.download(ctx, asset, dir, fetch),
				}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	outcomes := make([]*pagemirror.Outcome, total)
	completed := 0
	for result := range resultCh {
		completed++
		outcomes[result.position] = result.outcome

		if s.Progress == nil {
			continue
		}
		event := pagemirror.ProgressEvent{
			Type:      pagemirror.ProgressAssetCompleted,
			URL:       result.outcome.Asset.SourceURL,
			Completed: completed,
			Total:     total,
		}
		if result.outcome.OK() {
			event.Path = filepath.Join(dir, result.outcome.Asset.LocalFileName)
			event.Size = result.outcome.Size
			event.Hash = result.outcome.Hash
		} else {
			event.Type = pagemirror.ProgressAssetFailed
			event.Error = result.outcome.Err
		}
		s.Progress(event)
	}

	return outcomes
}

// download fetches and stores a single asset.
func (s *Scheduler) download(ctx context.Context, asset *pagemirror.Asset, dir string, fetch AssetFetchFunc) *pagemirror.Outcome {
	outcome := &pagemirror.Outcome{Asset: asset}
	fail := func(err error) *pagemirror.Outcome {
		outcome.Err = &pagemirror.AssetError{URL: asset.SourceURL, Err: err}
		return outcome
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	if s.RateLimiter != nil {
		u, err := url.Parse(asset.SourceURL)
		if err != nil {
			return fail(pagemirror.Errorf(pagemirror.EINVALID, "invalid asset URL: %v", err))
		}
		if err := s.RateLimiter.Wait(ctx, u.Host); err != nil {
			return fail(err)
		}
	}

	body, err := fetch(ctx, asset)
	if err != nil {
		return fail(err)
	}

	if err := s.FS.WriteFile(filepath.Join(dir, asset.LocalFileName), body); err != nil {
		return fail(err)
	}

	outcome.Size = len(body)
	outcome.Hash = computeHash(body)
	return outcome
}

// computeHash computes a hash of the content using xxhash.
func computeHash(content []byte) string {
	return fmt.Sprintf("%x", xxhash.Sum64(content))
}
