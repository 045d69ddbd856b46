// Package ui implements an interactive terminal movie browser using bubbletea's Elm architecture.
//
// The screen has two panes:
//  1. Search : a text input and the results of the most recent query
//  2. Details or Watched : the selected movie with a rating picker, or the watched list with its summary
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Search and detail requests run in [fetch.Controller] goroutines; their snapshots flow back through the
// controllers' Updates channels, so typing never blocks on the network.
// The watched list lives in a [state.Cell] and is written to the local store on every change.
//
// Keys: tab switches focus, / jumps back to search, enter selects a movie, esc closes it,
// 1-9 and 0 rate it, a adds it to the watched list, o opens IMDb and d deletes a watched entry.
package ui
