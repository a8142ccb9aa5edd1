package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fridge/internal/remotelist"
)

// listKey names the owner of a fetched list so the App can route results.
type listKey int

const (
	listFridges listKey = iota
	listFridgeItems
	listCatalog
	listProductPicker
	listProductTypes
	listUnits
)

// listMsg carries the result of one list fetch.
type listMsg struct {
	key    listKey
	result remotelist.Result[any]
}

type fetchFunc func(ctx context.Context) ([]any, error)

// listPane is a remote list with a cursor.
type listPane struct {
	key    listKey
	list   remotelist.List[any]
	cursor int
}

func newListPane(key listKey) listPane {
	return listPane{key: key}
}

// load starts a fetch. refresh keeps items on screen.
func (p *listPane) load(refresh bool, fetch fetchFunc) tea.Cmd {
	ticket := p.list.Begin(refresh)
	key := p.key
	return func() tea.Msg {
		return listMsg{key: key, result: remotelist.Fetch(context.Background(), ticket, fetch)}
	}
}

// resolve applies msg if it belongs to this pane and is still current.
func (p *listPane) resolve(msg listMsg) bool {
	if msg.key != p.key || !p.list.Resolve(msg.result) {
		return false
	}
	p.clamp()
	return true
}

func (p *listPane) dismiss() {
	p.list.Dismiss()
}

func (p *listPane) move(delta int) {
	p.cursor += delta
	p.clamp()
}

func (p *listPane) clamp() {
	if p.cursor >= len(p.list.Items) {
		p.cursor = len(p.list.Items) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p listPane) current() (any, bool) {
	if p.cursor < 0 || p.cursor >= len(p.list.Items) {
		return nil, false
	}
	return p.list.Items[p.cursor], true
}

// render draws the error banner, the refreshing marker and up to rows items.
func (p listPane) render(rows int, empty string, row func(item any, active bool) string) string {
	var b strings.Builder

	if p.list.Err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+p.list.Err) + "  " + helpEntry("t", "retry") + "\n")
		rows--
	}
	if p.list.Refreshing {
		b.WriteString(" " + dimStyle.Render("refreshing...") + "\n")
		rows--
	}
	if p.list.Loading && len(p.list.Items) == 0 {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if len(p.list.Items) == 0 {
		if p.list.Err == "" {
			b.WriteString("\n " + dimStyle.Render(empty) + "\n")
		}
		return b.String()
	}

	start, end := visibleRange(p.cursor, len(p.list.Items), rows)
	for i := start; i < end; i++ {
		b.WriteString(row(p.list.Items[i], i == p.cursor) + "\n")
	}
	return b.String()
}

// cursorMark renders the row cursor.
func cursorMark(active bool) string {
	if active {
		return accentStyle.Render("▸")
	}
	return " "
}
