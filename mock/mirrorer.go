package mock

import (
	"context"

	"github.com/fwojciec/pagemirror"
)

var _ pagemirror.Mirrorer = (*Mirrorer)(nil)

// Mirrorer is a mock implementation of pagemirror.Mirrorer.
type Mirrorer struct {
	MirrorFn func(ctx context.Context, sourceURL, outputDir string) (*pagemirror.Report, error)
}

func (m *Mirrorer) Mirror(ctx context.Context, sourceURL, outputDir string) (*pagemirror.Report, error) {
	return m.MirrorFn(ctx, sourceURL, outputDir)
}
