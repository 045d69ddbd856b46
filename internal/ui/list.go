package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/popcorn/internal/formatter"
	"github.com/desertthunder/popcorn/internal/models"
)

var (
	_ list.Item = resultItem{}
	_ list.Item = watchedItem{}
)

// resultItem wraps [models.SearchResult] to implement [list.Item].
type resultItem struct {
	result models.SearchResult
}

func (i resultItem) FilterValue() string { return i.result.Title }
func (i resultItem) Title() string       { return i.result.Title }
func (i resultItem) Description() string { return "🗓 " + i.result.Year }

// watchedItem wraps [models.WatchedEntry] to implement [list.Item].
type watchedItem struct {
	entry models.WatchedEntry
}

func (i watchedItem) FilterValue() string { return i.entry.Title }
func (i watchedItem) Title() string       { return i.entry.Title }
func (i watchedItem) Description() string {
	return fmt.Sprintf("⭐️ %.1f • 🌟 %d • ⏳ %s",
		i.entry.ExternalRating, i.entry.UserRating, formatter.FormatRuntime(i.entry.RuntimeMinutes))
}

func resultItems(results []models.SearchResult) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}

func watchedItems(entries models.WatchedList) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = watchedItem{entry: e}
	}
	return items
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}
