package logger

import (
	"log/slog"
	"time"
)

// Field helpers for structured logging
var (
	String  = slog.String
	Int     = slog.Int
	Int64   = slog.Int64
	Float64 = slog.Float64
	Bool    = slog.Bool
	Time    = slog.Time
	Any     = slog.Any

	Duration = func(key string, d time.Duration) slog.Attr {
		return slog.String(key, d.String())
	}

	ErrorField = func(err error) slog.Attr {
		if err == nil {
			return slog.String("error", "<nil>")
		}
		return slog.String("error", err.Error())
	}

	Component = func(name string) slog.Attr {
		return slog.String("component", name)
	}

	Operation = func(name string) slog.Attr {
		return slog.String("operation", name)
	}

	DatasetName = func(name string) slog.Attr {
		return slog.String("dataset", name)
	}

	Count = func(n int) slog.Attr {
		return slog.Int("count", n)
	}

	// BlockRange renders a [start, end) row window as a group
	BlockRange = func(start, end int) slog.Attr {
		return slog.Group("block", slog.Int("start_row", start), slog.Int("end_row", end))
	}
)
