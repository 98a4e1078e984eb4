// Package middleware provides HistoryStore decorators, such as encryption at
// rest, that compose with any backend.
package middleware
