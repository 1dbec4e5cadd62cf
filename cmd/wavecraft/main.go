// Package main provides the wavecraft CLI for inspecting, decoding, and
// encoding RIFF/WAVE and RF64 containers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

const (
	appName    = "wavecraft"
	appVersion = "0.1.0"
)

var (
	errInvalidArgCount = errors.New("expected exactly one argument: file path")
	errUnknownFormat   = errors.New("unknown sample format")
	errUnknownPolicy   = errors.New("unknown file size policy")
)

// newLogger builds the package-level console logger: plain JSON piped
// through a ConsoleWriter when stderr is a real terminal, color-capable
// even under the Windows console the teacher's CLI also had to support.
func newLogger() zerolog.Logger {
	var w io.Writer = os.Stderr

	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		w = zerolog.ConsoleWriter{Out: colorable.NewColorable(os.Stderr)}
	}

	return zerolog.New(w).With().Timestamp().Str("app", appName).Logger()
}

func main() {
	ctx := context.Background()
	logger := newLogger()

	app := &cli.Command{
		Name:    appName,
		Usage:   "Inspect, decode, and encode RIFF/WAVE containers",
		Version: appVersion,
		Commands: []*cli.Command{
			infoCommand(),
			decodeCommand(),
			encodeCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "error: %v\n", err) //nolint:errcheck // best-effort diagnostic on the way out.

		os.Exit(1)
	}
}

// openOutput resolves an --output flag value to a writer, returning a
// no-op closer for stdout so callers can unconditionally defer the close.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}

	file, err := os.Create(path) //nolint:gosec // CLI tool creates user-specified output files.
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}

	return file, file.Close, nil
}
