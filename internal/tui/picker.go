package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fridge/internal/selection"
)

// picker is a form field whose value is chosen from a remote list.
type picker struct {
	label    string
	pane     listPane
	fetch    fetchFunc
	selected selection.Selection
	open     bool
}

func newPicker(label string, key listKey, fetch fetchFunc) picker {
	return picker{label: label, pane: newListPane(key), fetch: fetch}
}

func (p *picker) mount() tea.Cmd {
	p.open = false
	p.selected = selection.Selection{}
	return p.pane.load(false, p.fetch)
}

func (p *picker) retry() tea.Cmd {
	return p.pane.load(false, p.fetch)
}

// handleKey drives the open list. picked reports that enter chose an entry.
func (p *picker) handleKey(key string) (picked bool, cmd tea.Cmd) {
	switch key {
	case "j", "down":
		p.pane.move(1)
	case "k", "up":
		p.pane.move(-1)
	case "r":
		return false, p.pane.load(true, p.fetch)
	case "t":
		return false, p.retry()
	case "esc":
		p.open = false
	case "enter":
		item, ok := p.pane.current()
		if !ok {
			return false, nil
		}
		p.selected = selection.Normalize(item)
		p.open = false
		return true, nil
	}
	return false, nil
}

// field renders the collapsed one-line form field.
func (p picker) field(focused bool) string {
	prefix := "   "
	labelStyle := metaStyle
	if focused {
		prefix = " " + accentStyle.Render("▸") + " "
		labelStyle = selectedStyle
	}
	line := prefix + labelStyle.Render(padLabel(p.label)) + " "

	switch {
	case !p.selected.IsZero():
		line += normalStyle.Render(p.selected.Label)
	case p.pane.list.Loading:
		line += dimStyle.Render("loading...")
	default:
		line += inputPlaceholderStyle.Render("choose (enter)")
	}
	if p.pane.list.Err != "" {
		line += "  " + errorStyle.Render(p.pane.list.Err)
		if focused {
			line += "  " + helpEntry("t", "retry")
		}
	}
	return line
}

// view renders the open list, highlighting the current selection.
func (p picker) view(rows int) string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("choose "+p.label) + "\n")
	b.WriteString(p.pane.render(rows-1, "nothing to choose from", func(item any, active bool) string {
		sel := selection.Normalize(item)
		label := normalStyle.Render(sel.Label)
		if active {
			label = selectedStyle.Render(sel.Label)
		}
		mark := ""
		if selection.Equal(sel, p.selected) {
			mark = " " + okStyle.Render("✓")
		}
		return " " + cursorMark(active) + " " + label + mark
	}))
	return b.String()
}

func (p picker) helpKeys() string {
	return helpBar(helpEntry("j/k", "nav"), helpEntry("enter", "choose"), helpEntry("r", "refresh"), helpEntry("t", "retry"), helpEntry("esc", "close"))
}
