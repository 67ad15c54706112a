// Package logging provides concrete implementations of the credcheck.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes prefixed lines to an io.Writer with thread-safe output
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
