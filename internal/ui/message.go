package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/popcorn/internal/fetch"
	"github.com/desertthunder/popcorn/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchUpdate MsgKind = iota
	MsgDetailUpdate
	MsgControllerClosed
	MsgBrowserOpened
)

// searchUpdateMsg is the constructor for [MsgSearchUpdate]
func searchUpdateMsg(s fetch.State[[]models.SearchResult]) Msg {
	return Msg{kind: MsgSearchUpdate, data: s}
}

// detailUpdateMsg is the constructor for [MsgDetailUpdate]
func detailUpdateMsg(s fetch.State[*models.MovieDetail]) Msg {
	return Msg{kind: MsgDetailUpdate, data: s}
}

// controllerClosedMsg is the constructor for [MsgControllerClosed]
func controllerClosedMsg(name string) Msg {
	return Msg{kind: MsgControllerClosed, data: name}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(url string, err error) Msg {
	return Msg{
		kind: MsgBrowserOpened,
		data: struct {
			url string
			err error
		}{url, err},
	}
}
