package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type menuEntry struct {
	key   string
	label string
	desc  string
	to    view
}

// homeMenu lists every destination reachable from home. A zero view logs out.
var homeMenu = []menuEntry{
	{"1", "fridges", "pick or create a fridge", viewFridges},
	{"2", "fridge contents", "items in the active fridge", viewFridge},
	{"3", "scanner", "scan a barcode and send it", viewScanner},
	{"4", "add product", "add a product to the catalog", viewAddProduct},
	{"5", "add item", "put a product in the active fridge", viewAddItem},
	{"6", "catalog", "browse products", viewProducts},
	{"7", "log out", "forget the stored session", viewLoading},
}

type loggedOutMsg struct {
	err error
}

type homeModel struct {
	session    Session
	cursor     int
	loggingOut bool
}

func newHomeModel(s Session) homeModel {
	return homeModel{session: s}
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loggedOutMsg:
		m.loggingOut = false
		m.cursor = 0
		if msg.err != nil {
			return m, flash("logged out, but the stored session could not be cleared: "+msg.err.Error(), true)
		}
		return m, nil

	case tea.KeyMsg:
		if m.loggingOut {
			return m, nil
		}
		switch key := msg.String(); key {
		case "j", "down":
			if m.cursor < len(homeMenu)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			return m.choose(homeMenu[m.cursor])
		default:
			for i, e := range homeMenu {
				if e.key == key {
					m.cursor = i
					return m.choose(e)
				}
			}
		}
	}
	return m, nil
}

func (m homeModel) choose(e menuEntry) (homeModel, tea.Cmd) {
	if e.to != viewLoading {
		return m, navigate(e.to)
	}
	m.loggingOut = true
	s := m.session
	return m, func() tea.Msg {
		return loggedOutMsg{err: s.Logout(context.Background())}
	}
}

func (m homeModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	for i, e := range homeMenu {
		label := normalStyle.Render(fmt.Sprintf("%-16s", e.label))
		if i == m.cursor {
			label = selectedStyle.Render(fmt.Sprintf("%-16s", e.label))
		}
		fmt.Fprintf(&b, " %s %s %s %s\n", cursorMark(i == m.cursor), helpKeyStyle.Render(e.key), label, dimStyle.Render(e.desc))
	}
	if m.loggingOut {
		b.WriteString("\n " + dimStyle.Render("logging out...") + "\n")
	}
	return b.String()
}

func (m homeModel) helpKeys() string {
	return helpBar(helpEntry("1-7", "jump"), helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("?", "help"), helpEntry("q", "quit"))
}
