package pagemirror

import (
	"context"

	"github.com/samber/lo"
)

// Asset is a same-origin resource referenced by the mirrored document.
// LocalFileName is unique within a run.
type Asset struct {
	SourceURL     string
	LocalFileName string
}

// Outcome is the terminal state of one asset.
// A nil Err means the asset was written to disk.
type Outcome struct {
	Asset *Asset
	Size  int    // bytes written
	Hash  string // xxhash64 of the content, hex
	Err   error
}

// OK reports whether the asset was mirrored.
func (o *Outcome) OK() bool {
	return o.Err == nil
}

// Report is the result of a completed mirror run.
type Report struct {
	RunID         string
	DocumentPath  string
	AssetsDirPath string
	Succeeded     []*Outcome
	Failed        []*Outcome
}

// NewReport partitions outcomes into succeeded and failed, preserving order.
func NewReport(runID string, paths *ResolvedPaths, outcomes []*Outcome) *Report {
	succeeded, failed := lo.FilterReject(outcomes, func(o *Outcome, _ int) bool {
		return o.OK()
	})
	return &Report{
		RunID:         runID,
		DocumentPath:  paths.DocumentPath,
		AssetsDirPath: paths.AssetsDirPath,
		Succeeded:     succeeded,
		Failed:        failed,
	}
}

// TotalBytes returns the number of asset bytes written.
func (r *Report) TotalBytes() int {
	return lo.SumBy(r.Succeeded, func(o *Outcome) int { return o.Size })
}

// Mirrorer saves a page and its same-origin assets for offline viewing.
type Mirrorer interface {
	Mirror(ctx context.Context, sourceURL, outputDir string) (*Report, error)
}
