// Package requestid tags each request with a correlation id so session log
// records produced while serving it can be grouped.
//
// Middleware reuses a well-formed X-Request-ID header or generates a UUID,
// echoes it on the response and stores it in the request context.
// LogExtractor plugs the id into loggers built by pkg/logger:
//
//	log := logger.New(logger.WithContextExtractors(
//		requestid.LogExtractor(),
//		session.LogExtractor(),
//	))
//	mgr, _ := session.New(store, session.WithSalt(salt), session.WithLogger(log))
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//	r.Use(mgr.Middleware(transport))
package requestid
