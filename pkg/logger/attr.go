package logger

import (
	"log/slog"
	"time"
)

// Error records err under the key "error". A nil error yields an empty Attr,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Reason records why a session was rejected.
func Reason(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("reason", err.Error())
}

// Partition records the hashed owner partition.
// Never pass a raw owner key or a session token.
func Partition(p string) slog.Attr {
	if p == "" {
		return slog.Attr{}
	}
	return slog.String("partition", p)
}

func Backend(name string) slog.Attr {
	return slog.String("backend", name)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// TTL records a session lifetime in whole seconds.
func TTL(d time.Duration) slog.Attr {
	return slog.Int64("ttl_seconds", int64(d/time.Second))
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}
