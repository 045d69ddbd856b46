// Package repositories implements SQLite persistence for the application's durable local store.
//
// [LocalStorageRepository] maps string keys to string values in the local_storage table created by the embedded
// migrations in internal/shared. It satisfies state.Store, so persisted state cells such as the watched list
// write through to it on every change.
//
// Each row tracks a revision counter incremented on every write, which `popcorn store keys` reports.
package repositories
