// Package mocks provides centralized mock implementations for testing.
//
// Each mock implements one of the application's interfaces with function
// fields for customizable behavior and a simple in-memory default, so
// test files across packages can share one implementation instead of
// defining inline mocks.
package mocks
