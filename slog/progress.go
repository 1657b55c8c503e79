package slog

import (
	"log/slog"

	"github.com/fwojciec/pagemirror"
)

// NewProgressLogger returns a ProgressFunc that logs each event.
// Failed assets are logged at warn level, everything else at debug.
func NewProgressLogger(logger *slog.Logger) pagemirror.ProgressFunc {
	return func(event pagemirror.ProgressEvent) {
		switch event.Type {
		case pagemirror.ProgressAssetFailed:
			logger.Warn("asset failed",
				"run", event.RunID,
				"url", event.URL,
				"completed", event.Completed,
				"total", event.Total,
				"err", event.Error,
			)
		case pagemirror.ProgressAssetCompleted:
			logger.Debug("asset saved",
				"run", event.RunID,
				"url", event.URL,
				"path", event.Path,
				"bytes", event.Size,
				"hash", event.Hash,
				"completed", event.Completed,
				"total", event.Total,
			)
		default:
			logger.Debug(event.Type.String(),
				"run", event.RunID,
				"url", event.URL,
				"path", event.Path,
				"completed", event.Completed,
				"total", event.Total,
			)
		}
	}
}
