// Package driving defines interfaces that external actors (CLI, TUI) use
// to interact with core services. These are the "driving" ports in hexagonal
// architecture terminology - they drive the application.
//
// Event-style platform input (clicks, key presses, file change events) is
// adapted into these explicit synchronous commands by the thin driving
// adapters; the core exposes nothing else.
//
// Implementations of these interfaces live in internal/core/services.
package driving
