// Package testutil provides fluent builders for constructing domain values
// in tests.
package testutil
