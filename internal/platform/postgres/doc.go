// Package postgres provides PostgreSQL implementations of the store
// interfaces, plus connection setup and embedded schema migrations.
//
// All stores map database failures to the sentinel errors defined in
// the store package so callers never see driver-specific errors.
package postgres
