// Package httpserver wraps net/http's Server with graceful shutdown,
// env-driven configuration, and health-check handlers.
//
// Run blocks until the context is canceled, SIGINT/SIGTERM arrives, or the
// listener fails; in the first two cases in-flight requests get
// ShutdownTimeout to complete.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server exited", logger.Error(err))
//	}
package httpserver
