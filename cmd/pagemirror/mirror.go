package main

import (
	"fmt"
	"io"
	"net/url"

	"github.com/fwojciec/pagemirror"
)

// Run executes the mirror command.
func (c *MirrorCmd) Run(deps *Dependencies) error {
	report, err := deps.Mirrorer.Mirror(deps.Ctx, c.URL, c.Output)
	if err != nil {
		return err
	}

	for _, o := range report.Failed {
		fmt.Fprintf(deps.Stderr, "skip %s: %v\n", o.Asset.SourceURL, o.Err)
	}

	fmt.Fprintf(deps.Stdout, "Page was successfully downloaded into '%s'\n", report.DocumentPath)

	total := len(report.Succeeded) + len(report.Failed)
	switch {
	case total == 0:
	case len(report.Failed) == 0:
		fmt.Fprintf(deps.Stdout, "Saved %d assets (%d bytes)\n", total, report.TotalBytes())
	default:
		fmt.Fprintf(deps.Stdout, "Saved %d of %d assets (%d bytes)\n", len(report.Succeeded), total, report.TotalBytes())
	}

	return nil
}

// newProgressPrinter draws a single updating progress line on w.
func newProgressPrinter(w io.Writer) pagemirror.ProgressFunc {
	return func(e pagemirror.ProgressEvent) {
		switch e.Type {
		case pagemirror.ProgressAssetCompleted, pagemirror.ProgressAssetFailed:
			fmt.Fprintf(w, "\r[%d/%d] %s", e.Completed, e.Total, truncateURL(e.URL, 40))
		case pagemirror.ProgressFinished:
			if e.Total > 0 {
				// Clear progress line
				fmt.Fprintf(w, "\r%80s\r", "")
			}
		}
	}
}

// chainProgress calls each non-nil fn in order. It returns nil when there is
// nothing to call.
func chainProgress(fns ...pagemirror.ProgressFunc) pagemirror.ProgressFunc {
	var active []pagemirror.ProgressFunc
	for _, fn := range fns {
		if fn != nil {
			active = append(active, fn)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return func(e pagemirror.ProgressEvent) {
		for _, fn := range active {
			fn(e)
		}
	}
}

// truncateURL shortens a URL for display by showing only the path.
// This makes progress more useful when many URLs share the same host prefix.
func truncateURL(rawURL string, maxLen int) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		// Fallback to simple right-truncation
		if len(rawURL) <= maxLen {
			return rawURL
		}
		return rawURL[:maxLen-3] + "..."
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	if len(path) <= maxLen {
		return path
	}

	// Truncate from the left to show the unique suffix
	return "..." + path[len(path)-maxLen+3:]
}
