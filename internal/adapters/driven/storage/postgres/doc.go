// Package postgres provides a PostgreSQL-backed state store for teams that
// share one codebook database. Writes carry the version they were based on
// and are rejected when another writer got there first.
package postgres
