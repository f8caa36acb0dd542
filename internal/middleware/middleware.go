// Package middleware holds the echo middleware shared by every route:
// request ids, the request logger, New Relic tracing, rate limiting, the
// per-request database session and the global error handler.
package middleware
