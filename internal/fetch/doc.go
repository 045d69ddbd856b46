// Package fetch implements a query-scoped fetch controller: an asynchronous data source keyed by a changing input.
//
// Each call to [Controller.Observe] starts a query cycle. Starting a cycle cancels the previous one, and a
// cycle's outcome is applied only while it is still the newest cycle, so a slow response for an old query can
// never overwrite the state of a newer one. Cancellation propagates through the cycle's context to the
// transport, aborting the physical request.
//
// Queries shorter than [Options.MinQueryLength] short-circuit to an empty, idle state without a fetch.
//
// Fetch failures never escape the controller: they are turned into a message by [Options.Describe] and stored in
// [State.Error]. Cancellation issued by the controller itself is swallowed.
//
// State changes are published on [Controller.Updates]. The channel holds only the newest snapshot; a consumer
// that falls behind skips intermediate states rather than blocking the controller. This suits the bubbletea
// loop in internal/ui, which waits on the channel with a tea.Cmd.
package fetch
