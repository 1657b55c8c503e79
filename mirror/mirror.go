// Package mirror implements the page mirroring pipeline: resource extraction,
// fetch retries, concurrent asset downloads and the run that ties them together.
package mirror

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/fwojciec/pagemirror"
	"github.com/google/uuid"
)

// Ensure Mirrorer implements pagemirror.Mirrorer at compile time.
var _ pagemirror.Mirrorer = (*Mirrorer)(nil)

// Mirrorer mirrors one page per call to Mirror. It holds no state between
// runs and is safe to reuse.
type Mirrorer struct {
	// Fetcher retrieves the document and its assets. Wrap it in a
	// RetryFetcher to retry transient failures.
	Fetcher pagemirror.Fetcher
	Parser  pagemirror.DocumentParser
	FS      pagemirror.FileSystem

	Concurrency int
	RateLimiter pagemirror.DomainLimiter
	Progress    pagemirror.ProgressFunc
}

// Mirror downloads sourceURL into outputDir and rewrites it to reference local
// copies of its same-origin assets.
//
// Failing to prepare the output location, fetch the document or write it is
// fatal and returns an error with no report. Asset failures are recorded in
// Report.Failed and do not fail the run.
func (m *Mirrorer) Mirror(ctx context.Context, sourceURL, outputDir string) (*pagemirror.Report, error) {
	paths, err := pagemirror.ResolvePaths(&pagemirror.PageTarget{
		SourceURL: sourceURL,
		OutputDir: outputDir,
	})
	if err != nil {
		return nil, err
	}

	run := &run{
		Mirrorer: m,
		id:       uuid.NewString(),
		source:   sourceURL,
		paths:    paths,
	}
	report, err := run.execute(ctx)
	if err != nil {
		run.cleanup()
		return nil, err
	}
	return report, nil
}

// run holds the state of one Mirror call.
type run struct {
	*Mirrorer
	id     string
	source string
	paths  *pagemirror.ResolvedPaths

	// created lists directories made by this run, outermost first.
	created []string
}

func (r *run) execute(ctx context.Context) (*pagemirror.Report, error) {
	if err := r.ensureDir(r.paths.OutputDir); err != nil {
		return nil, err
	}

	exists, err := r.FS.Exists(r.paths.DocumentPath)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pagemirror.Errorf(pagemirror.ECONFLICT, "%s already exists", r.paths.DocumentPath)
	}

	if err := r.ensureDir(r.paths.AssetsDirPath); err != nil {
		return nil, err
	}

	body, err := r.Fetcher.Fetch(ctx, r.source)
	if err != nil {
		return nil, pagemirror.WrapError(pagemirror.EUNREACHABLE, err, "cannot fetch %s", r.source)
	}
	r.progress(pagemirror.ProgressEvent{
		Type: pagemirror.ProgressDocumentFetched,
		URL:  r.source,
	})

	extracted, err := NewExtractor(r.Parser).Extract(string(body), r.source, r.paths.AssetsDirName)
	if err != nil {
		return nil, err
	}

	// The document may have appeared while it was being fetched.
	if err := r.FS.CreateFile(r.paths.DocumentPath, []byte(extracted.HTML)); err != nil {
		return nil, asFilesystemError(err, "cannot write %s", r.paths.DocumentPath)
	}

	r.progress(pagemirror.ProgressEvent{
		Type:  pagemirror.ProgressAssetsStarted,
		URL:   r.source,
		Path:  r.paths.DocumentPath,
		Total: len(extracted.Assets),
	})

	scheduler := &Scheduler{
		FS:          r.FS,
		Concurrency: r.Concurrency,
		RateLimiter: r.RateLimiter,
	}
	if r.Progress != nil {
		scheduler.Progress = r.progress
	}
	outcomes := scheduler.Run(ctx, extracted.Assets, r.paths.AssetsDirPath, r.fetchAsset)
	outcomes = append(outcomes, extracted.Collisions...)

	report := pagemirror.NewReport(r.id, r.paths, outcomes)
	r.progress(pagemirror.ProgressEvent{
		Type:      pagemirror.ProgressFinished,
		URL:       r.source,
		Path:      report.DocumentPath,
		Completed: len(report.Succeeded),
		Total:     len(outcomes),
	})
	return report, nil
}

func (r *run) fetchAsset(ctx context.Context, asset *pagemirror.Asset) ([]byte, error) {
	return r.Fetcher.Fetch(ctx, asset.SourceURL)
}

// ensureDir creates dir if it does not exist. Every level that was missing
// is remembered, outermost first, so cleanup can remove all of them.
func (r *run) ensureDir(dir string) error {
	var missing []string
	for d := filepath.Clean(dir); ; {
		exists, err := r.FS.Exists(d)
		if err != nil {
			return err
		}
		if exists {
			break
		}
		missing = append(missing, d)
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	if len(missing) == 0 {
		return nil
	}
	if err := r.FS.MkdirAll(dir); err != nil {
		return asFilesystemError(err, "cannot create %s", dir)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		r.created = append(r.created, missing[i])
	}
	return nil
}

// cleanup removes directories created by a failed run, innermost first.
func (r *run) cleanup() {
	for i := len(r.created) - 1; i >= 0; i-- {
		_ = r.FS.RemoveAll(r.created[i])
	}
	r.created = nil
}

// progress stamps event with the run ID and forwards it.
func (r *run) progress(event pagemirror.ProgressEvent) {
	event.RunID = r.id
	if r.Progress != nil {
		r.Progress(event)
	}
}

// asFilesystemError tags err as EFILESYSTEM unless it already carries a code.
func asFilesystemError(err error, format string, args ...any) error {
	var e *pagemirror.Error
	if errors.As(err, &e) {
		return err
	}
	return pagemirror.WrapError(pagemirror.EFILESYSTEM, err, format, args...)
}
