// Package models defines the movie domain types shared by the OMDb client, the terminal UI and the CLI.
//
// The package contains two categories of types:
//
// 1. Upstream records fetched from OMDb
//   - [SearchResult] : one hit of a title search
//   - [MovieDetail] : full record for a single title, fetched lazily per selection
//
// 2. The user's watched collection, persisted through a state cell
//   - [WatchedEntry] : movie metadata combined with a personal rating
//   - [WatchedList] : ordered collection unique by movie ID
//   - [WatchedSummary] : aggregate counts and averages for display
//
// [WatchedEntry] keeps the JSON field names used by earlier versions of the watched list so stored data stays readable.
package models
