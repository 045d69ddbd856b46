// Package tasks runs long operations over the watched list with real-time progress reporting.
//
// # Refresh
//
// [RefreshEngine.Refresh] re-fetches the OMDb record of every watched movie with a bounded worker pool
// and reports the IMDb rating, runtime and title changes it found. User ratings and rating revision counts are never touched.
// The result is applied to a list with [RefreshResult.Apply], which is a pure updater suitable for [state.Cell.Update],
// so entries removed while the refresh ran stay removed.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends use select with default, so a slow or absent reader never blocks a worker.
package tasks
