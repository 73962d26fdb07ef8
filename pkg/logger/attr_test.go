package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

func TestAttrs(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want any
	}{
		{"error", logger.Error(boom), "error", boom},
		{"reason", logger.Reason(errors.New("session.expired")), "reason", "session.expired"},
		{"partition", logger.Partition("abc"), "partition", "abc"},
		{"backend", logger.Backend("dynamodb"), "backend", "dynamodb"},
		{"request id", logger.RequestID("req-1"), "request_id", "req-1"},
		{"ttl", logger.TTL(90 * time.Minute), "ttl_seconds", int64(5400)},
		{"component", logger.Component("session"), "component", "session"},
		{"event", logger.Event("touch"), "event", "touch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.Any())
		})
	}
}

func TestAttrs_EmptyValuesAreDropped(t *testing.T) {
	t.Parallel()

	for name, attr := range map[string]slog.Attr{
		"error":      logger.Error(nil),
		"reason":     logger.Reason(nil),
		"partition":  logger.Partition(""),
		"request id": logger.RequestID(""),
	} {
		assert.True(t, attr.Equal(slog.Attr{}), name)
	}
}
