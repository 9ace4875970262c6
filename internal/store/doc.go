// Package store defines the persistence interfaces for the application's
// entities. Implementations live in internal/platform/postgres; tests use
// the in-memory implementations from internal/mocks.
package store
