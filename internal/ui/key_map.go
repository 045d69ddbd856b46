package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	back   key.Binding
	tab    key.Binding
	search key.Binding
	rate   key.Binding
	add    key.Binding
	open   key.Binding
	remove key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		rate: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-0", "rate"),
		),
		add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to watched")),
		open:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open imdb")),
		remove: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.tab, k.search, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.rate, k.add, k.open, k.remove},
		{k.tab, k.search, k.quit},
	}
}
