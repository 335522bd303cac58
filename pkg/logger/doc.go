// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// The single factory – New – creates a *slog.Logger configured by a set of
// Option functions. These options allow you to:
//
//   - Select an output format (text or json)
//   - Set the minimum log level
//   - Supply default slog.Attr values applied to every record
//   - Register ContextExtractor callbacks that inject attributes pulled from a
//     context value (for example a request id) every time Handle is invoked.
//
// Helper constructors such as Error, UserID, MessageID and EventType live in
// attr.go and keep attribute naming consistent across the delivery pipeline.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithProduction("notifyd"),
//	    logger.WithAttr(slog.String("version", "1.0.0")),
//	)
//	log.InfoContext(ctx, "message sent", logger.MessageID(msg.ID))
package logger
