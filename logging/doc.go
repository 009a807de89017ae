// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. Library components accept a Logger and default to
// NoOpLogger so that embedding camkit never forces a logging setup.
package logging
