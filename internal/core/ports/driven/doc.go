// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentTree: Mutation capabilities over a rendered document tree
//   - HighlightStore: Highlight set persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentKeyResolver: Maps document locations to canonical keys.
//     Without a key mapping, load/save are skipped and highlights stay
//     session-local.
//   - ConfigStore: Application configuration. Defaults apply without it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
