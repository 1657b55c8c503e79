package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/pagemirror"
)

// Ensure LoggingParser implements pagemirror.DocumentParser.
var _ pagemirror.DocumentParser = (*LoggingParser)(nil)

// LoggingParser wraps a DocumentParser with debug logging.
type LoggingParser struct {
	next   pagemirror.DocumentParser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next pagemirror.DocumentParser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser and logs the document size.
func (p *LoggingParser) Parse(html string) (doc pagemirror.Document, err error) {
	defer func(begin time.Time) {
		p.logger.Debug("parse",
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Parse(html)
}
