package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pagemirror"
	"github.com/fwojciec/pagemirror/fs"
	"github.com/fwojciec/pagemirror/goquery"
	pmhttp "github.com/fwojciec/pagemirror/http"
	"github.com/fwojciec/pagemirror/mirror"
	pmslog "github.com/fwojciec/pagemirror/slog"
	"github.com/mattn/go-isatty"
	"github.com/motemen/go-loghttp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", describe(err))
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// IsTerminal reports whether w is an interactive terminal.
	// Progress lines are only drawn on terminals.
	IsTerminal func(w io.Writer) bool
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{IsTerminal: isTerminal}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagemirror"),
		kong.Description("Download a web page and its same-origin assets for offline viewing"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	_, err = parser.Parse(args)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, cli.Debug)

	deps := &Dependencies{
		Ctx:      ctx,
		Stdout:   stdout,
		Stderr:   stderr,
		Mirrorer: m.newMirrorer(cli, logger, stdout),
	}

	cmd := &MirrorCmd{
		URL:    cli.URL,
		Output: cli.Output,
	}

	return cmd.Run(deps)
}

// newMirrorer wires the mirroring pipeline from CLI options.
func (m *Main) newMirrorer(cli *CLI, logger *slog.Logger, stdout io.Writer) *mirror.Mirrorer {
	opts := []pmhttp.Option{
		pmhttp.WithTimeout(cli.Timeout),
		pmhttp.WithUserAgent(cli.UserAgent),
	}
	if cli.Debug {
		opts = append(opts, pmhttp.WithTransport(newDebugTransport(logger)))
	}

	var fetcher pagemirror.Fetcher = pmhttp.NewFetcher(opts...)
	fetcher = pmslog.NewLoggingFetcher(fetcher, logger)

	policy := mirror.RetryPolicy{
		Retries: cli.Retries,
		Delay:   cli.RetryDelay,
		Jitter:  mirror.DefaultRetryPolicy().Jitter,
	}
	if policy.Delay <= 0 {
		policy.Jitter = 0
	}
	retryLog := func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...))
	}

	var progress []pagemirror.ProgressFunc
	if m.IsTerminal != nil && m.IsTerminal(stdout) {
		progress = append(progress, newProgressPrinter(stdout))
	}
	if cli.Debug {
		progress = append(progress, pmslog.NewProgressLogger(logger))
	}

	return &mirror.Mirrorer{
		Fetcher:     mirror.NewRetryFetcher(fetcher, policy, retryLog),
		Parser:      pmslog.NewLoggingParser(goquery.NewParser(), logger),
		FS:          fs.NewFileSystem(),
		Concurrency: cli.Concurrency,
		RateLimiter: mirror.NewDomainLimiter(cli.Rate, 1),
		Progress:    chainProgress(progress...),
	}
}

// newLogger returns a text logger on stderr, at debug level when debug is set.
func newLogger(stderr io.Writer, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, opts))
}

// newDebugTransport logs every HTTP request and response at debug level.
func newDebugTransport(logger *slog.Logger) http.RoundTripper {
	return &loghttp.Transport{
		Transport: http.DefaultTransport,
		LogRequest: func(req *http.Request) {
			logger.Debug("HTTP request",
				"method", req.Method,
				"url", req.URL.String(),
				"headers", req.Header,
			)
		},
		LogResponse: func(resp *http.Response) {
			logger.Debug("HTTP response",
				"method", resp.Request.Method,
				"url", resp.Request.URL.String(),
				"status", resp.Status,
				"status_code", resp.StatusCode,
				"headers", resp.Header,
			)
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// describe renders err for the user, including the underlying cause of
// application errors.
func describe(err error) string {
	var e *pagemirror.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}
