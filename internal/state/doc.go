// Package state implements persisted state cells: values that are mirrored to a durable key-value [Store] on every
// change and rehydrated when the cell is created.
//
// A [Cell] is generic over any JSON-serializable type. On creation it loads the value stored under its key and
// falls back to the supplied initial value when nothing is stored, the stored text is not valid JSON for the
// type, or the optional validator rejects it. [Cell.Set] replaces the value and [Cell.Update] derives the new value
// from the latest one; both write through to the store before returning.
//
// The durable store used by the application is the SQLite-backed repositories.LocalStorageRepository.
// [MemoryStore] is a process-local implementation for tests and ephemeral sessions.
package state
