package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/pagemirror"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL         string        `arg:"" required:"" help:"Page URL to mirror"`
	Output      string        `short:"o" default:"." help:"Directory to save the page into (default: current directory)"`
	Concurrency int           `short:"c" default:"5" help:"Concurrent asset download limit"`
	Retries     int           `default:"2" help:"Retries after a failed fetch"`
	RetryDelay  time.Duration `default:"3s" help:"Delay between fetch attempts"`
	Timeout     time.Duration `short:"t" default:"10s" help:"Timeout per request"`
	Rate        float64       `default:"0" help:"Requests per second per host (0 for unlimited)"`
	UserAgent   string        `default:"pagemirror/1.0" help:"User-Agent header sent with each request"`
	Debug       bool          `env:"PAGEMIRROR_DEBUG" help:"Log every request and pipeline step to stderr"`
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Mirrorer pagemirror.Mirrorer
}

// MirrorCmd handles the main mirror operation.
type MirrorCmd struct {
	URL    string
	Output string
}
