// Package logger provides structured logging for whisperdesk on top of zerolog.
//
// Components obtain a tagged logger by name and attach map-based fields:
//
//	log := logger.Get("registry")
//	log.Info("model loaded", logger.Fields(logger.FieldModel, "base", logger.FieldDuration, 812))
//
// Request-scoped values (request id, trace id) travel in the context and are
// attached with WithContext.
package logger
