// Package logging provides structured logging built on log/slog.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logger.Info("transaction screened",
//	    "transaction_id", "tx-123",
//	    "action", "block",
//	)
//
// Components derive scoped loggers with logger.With("component", name), so
// every line carries its origin.
//
// # Context
//
// Request-scoped identifiers travel through context.Context:
//
//	ctx = logging.WithRequestID(ctx, requestID)
//	logger.InfoContext(ctx, "screening transaction")
package logging
