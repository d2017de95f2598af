// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The render pipeline is single-threaded by design: indexing, matching and
// rendering run synchronously on the calling goroutine, and only the
// persistence round trip is asynchronous from the user's point of view.
// The one concurrency guard is the HighlightService busy flag.
//
// Services are pure Go with no external dependencies beyond the domain's
// UUID helper.
package services
