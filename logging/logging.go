// Package logging builds the process logger used by the SDK and the CLI.
//
// Three levels mirror the platform's log verbosity: LevelNone discards
// everything, LevelError keeps failures only and LevelVerbose adds progress
// and request tracing. Output goes through log/slog, using tint for
// terminals and the JSON handler for machine consumption.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Level is the verbosity of the logger.
type Level int

const (
	LevelNone    Level = 1
	LevelError   Level = 2
	LevelVerbose Level = 3
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelError:
		return "error"
	case LevelVerbose:
		return "verbose"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Slog maps the level onto the slog threshold.
func (l Level) Slog() slog.Level {
	switch l {
	case LevelVerbose:
		return slog.LevelDebug
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel accepts none, error, verbose and the slog names debug, info, warn.
// Unknown values fall back to LevelError.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off", "silent":
		return LevelNone
	case "verbose", "debug", "info":
		return LevelVerbose
	case "error", "warn", "warning":
		return LevelError
	default:
		return LevelError
	}
}

// Options configures New.
type Options struct {
	Level Level
	// JSON switches from the tint handler to slog's JSON handler.
	JSON bool
	// NoColor disables ANSI colors in tint output.
	NoColor bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	if opts.Level == LevelNone || opts.Level == 0 {
		return slog.New(slog.DiscardHandler)
	}

	level := opts.Level.Slog()

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	} else {
		h = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    opts.NoColor,
		})
	}

	return slog.New(h)
}
