// Package observability provides structured logging for the retrieval
// service.
//
// This package implements:
//   - zap logger construction from LOG_LEVEL / LOG_FORMAT
//   - Request-scoped loggers carried on the context
//   - Log-safe query previews (PII redaction + truncation)
package observability
