// Package database provides the SQLite persistence layer for Medbox Core.
//
// It wraps database/sql with lifecycle management (directory creation,
// WAL mode, busy timeout, restrictive file permissions), health checks,
// and an embedded-migration runner. SQL migration files are compiled
// into the binary by the top-level migrations package, so deployments
// never depend on loose .sql files.
//
// SQLite is configured for a single writer; repositories that share a
// *DB therefore serialise writes through the connection pool.
package database
