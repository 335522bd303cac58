// Package pg provides PostgreSQL connection management built on pgx.
//
// It covers the lifecycle pieces every deployment needs: a retrying Connect
// that tolerates a database still coming up, goose-based schema migrations
// routed through the application logger, a readiness probe, and error
// classification helpers (not-found, duplicate key, foreign key violation)
// so callers never match on SQLSTATE strings themselves.
//
// Configuration comes from environment variables via the Config struct.
package pg
