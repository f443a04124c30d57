// Package log provides structured, context-aware logging for the issuance
// service.
//
// Components receive a Logger explicitly and name themselves with WithName:
//
//	logger := log.NewZapLogger(log.Config{Format: "json", Level: log.LevelInfo})
//	gateway := logger.WithName("protocol")
//	gateway.Info("minted", "recipient", recipient, "amount", amount)
//
// A logger can travel with a request context. When the context carries an
// OpenTelemetry span, SetContextLogger wraps the logger in a SpanLogger so
// every entry is also recorded as a span event:
//
//	ctx = log.SetContextLogger(ctx, logger)
//	log.FromContext(ctx).Warn("authorization rejected", "recovered", addr)
//
// FromContext never returns nil; without a stored logger it yields a
// NoopLogger.
package log
