package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects the output encoding of a logger.
type Format string

const (
	// FormatText writes slog's key=value text lines.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
	// FormatAuto picks text for terminals and JSON for everything else.
	FormatAuto Format = "auto"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown log format")

// ParseFormat parses a format name. Matching is case-insensitive and an
// empty string means FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatText, FormatJSON, FormatAuto:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want text, json or auto)", ErrUnknownFormat, s)
	}
}

// Resolve turns FormatAuto into a concrete format for w.
func (f Format) Resolve(w io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) { //nolint:gosec // fd fits in int
		return FormatText
	}
	return FormatJSON
}

// Level returns the minimum level for the given verbosity:
// Debug when verbose, Warn otherwise.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// New returns a masking logger writing to w.
func New(w io.Writer, verbose bool, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(verbose)}

	var h slog.Handler
	switch format.Resolve(w) {
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewSecureHandler(h))
}
