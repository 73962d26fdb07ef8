// Package logger builds log/slog loggers for session services.
//
// New picks slog.NewTextHandler or slog.NewJSONHandler from the configured
// Format. When ContextExtractor callbacks are registered the handler is
// wrapped so their attributes are appended to every record.
//
// Environment presets set level, format and the service/env attributes:
//
//	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "auth-api"))
//
// or, from environment variables through pkg/config:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.NewFromConfig(cfg)
//
// Request-scoped attributes come from extractors:
//
//	log := logger.New(
//		logger.WithContextExtractors(requestid.LogExtractor(), session.LogExtractor()),
//	)
//
// The attribute helpers in attr.go keep key names consistent. Helpers for
// optional values (Error, Reason, Partition, RequestID) return an empty Attr
// for zero input, which slog drops:
//
//	log.WarnContext(ctx, "old session survived rotation",
//		logger.Event("regenerate"),
//		logger.Partition(s.Partition),
//		logger.Error(err),
//	)
//
// Partition takes the hashed owner key. Raw owner keys and session tokens
// must never be logged.
package logger
