package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrymomot/sessionkit/pkg/environment"
)

// Format represents logger output format.
type Format string

const (
	// FormatJSON outputs structured logs for production log aggregation systems.
	FormatJSON Format = "json"
	// FormatText outputs human-readable logs for development debugging.
	FormatText Format = "text"
)

// Config holds logger settings loadable from the environment.
type Config struct {
	Service string     `env:"SERVICE_NAME" envDefault:"sessionkit"`
	Env     string     `env:"APP_ENV" envDefault:"development"`
	Level   slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	Format  Format     `env:"LOG_FORMAT" envDefault:""`
}

// NewFromConfig creates a logger from cfg. Environment defaults apply
// first; an explicit Format and Level override them.
func NewFromConfig(cfg Config, opts ...Option) *slog.Logger {
	configOpts := []Option{WithEnvironment(cfg.Env, cfg.Service)}
	if cfg.Format != "" {
		configOpts = append(configOpts, WithFormat(cfg.Format))
	}
	if cfg.Level != slog.LevelInfo {
		configOpts = append(configOpts, WithLevel(cfg.Level))
	}
	return New(append(configOpts, opts...)...)
}

// Option configures logger creation.
type Option func(*config)

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat sets output format.
// Panics for invalid formats: a misconfigured logger should stop startup.
func WithFormat(f Format) Option {
	return func(c *config) {
		switch f {
		case FormatJSON, FormatText:
			c.format = f
		default:
			panic(fmt.Errorf("invalid log format %q: must be %q or %q", f, FormatJSON, FormatText))
		}
	}
}

func WithTextFormatter() Option {
	return func(c *config) {
		c.format = FormatText
	}
}

func WithJSONFormatter() Option {
	return func(c *config) {
		c.format = FormatJSON
	}
}

// WithOutput sets custom output destination, ignoring nil writers.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every log record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		if len(attrs) > 0 {
			c.attrs = append(c.attrs, attrs...)
		}
	}
}

// WithContextExtractors registers functions that inject dynamic attributes from context.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		for _, ex := range extractors {
			if ex != nil {
				c.extractors = append(c.extractors, ex)
			}
		}
	}
}

// WithContextValue adds an extractor that logs ctx.Value(key) under name.
func WithContextValue(name string, key any) Option {
	return func(c *config) {
		if name == "" || key == nil {
			return
		}
		c.extractors = append(c.extractors, func(ctx context.Context) (slog.Attr, bool) {
			if v := ctx.Value(key); v != nil {
				return slog.Any(name, v), true
			}
			return slog.Attr{}, false
		})
	}
}

// WithDevelopment configures text output at debug level.
func WithDevelopment(service string) Option {
	return withEnv(environment.Development, service, slog.LevelDebug, FormatText)
}

// WithProduction configures JSON output at info level.
func WithProduction(service string) Option {
	return withEnv(environment.Production, service, slog.LevelInfo, FormatJSON)
}

func WithStaging(service string) Option {
	return withEnv(environment.Staging, service, slog.LevelInfo, FormatJSON)
}

// WithEnvironment selects the defaults for env, accepting the short
// aliases understood by environment.Parse.
func WithEnvironment(env string, service string) Option {
	switch environment.Parse(env) {
	case environment.Production:
		return WithProduction(service)
	case environment.Staging:
		return WithStaging(service)
	default:
		return WithDevelopment(service)
	}
}

func withEnv(env environment.Environment, service string, level slog.Level, format Format) Option {
	return func(c *config) {
		if service == "" {
			return
		}
		c.level = level
		c.format = format
		c.attrs = append(c.attrs,
			slog.String("service", service),
			slog.String("env", string(env)),
		)
	}
}

func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

type config struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

func defaultConfig() *config {
	return &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
}

// New creates a configured slog.Logger with context injection capabilities.
func New(opts ...Option) *slog.Logger {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}

	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}

	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}

	return slog.New(newContextHandler(handler, cfg.extractors))
}
