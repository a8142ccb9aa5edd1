package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fridge/internal/forms"
	"github.com/naveenspark/fridge/pkg/client"
	"github.com/naveenspark/fridge/pkg/domain"
)

type fridgeCreatedMsg struct {
	payload any
	err     error
}

type fridgesModel struct {
	api      API
	session  Session
	pane     listPane
	naming   bool // create-fridge input is open
	name     string
	creating bool
	status   string
	frame    int
	height   int
}

func newFridgesModel(api API, s Session) fridgesModel {
	return fridgesModel{api: api, session: s, pane: newListPane(listFridges)}
}

func (m *fridgesModel) mount() tea.Cmd {
	m.naming, m.name, m.status, m.creating = false, "", "", false
	m.pane.list.Revive()
	return m.pane.load(false, m.api.ListFridges)
}

func (m fridgesModel) Update(msg tea.Msg) (fridgesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case shimmerTickMsg:
		m.frame++
	case listMsg:
		m.pane.resolve(msg)

	case fridgeCreatedMsg:
		m.creating = false
		if msg.err != nil {
			m.status = client.ErrorMessage(msg.err)
			return m, nil
		}
		m.naming, m.name, m.status = false, "", ""
		created := domain.FridgeFrom(msg.payload)
		if created.ID == "" {
			return m, m.pane.load(true, m.api.ListFridges)
		}
		m.pane.list.Prepend(msg.payload)
		m.pane.cursor = 0
		return m, m.activate(created)

	case tea.KeyMsg:
		if m.naming {
			return m.updateNaming(msg)
		}
		switch msg.String() {
		case "j", "down":
			m.pane.move(1)
		case "k", "up":
			m.pane.move(-1)
		case "r":
			return m, m.pane.load(true, m.api.ListFridges)
		case "t":
			return m, m.pane.load(false, m.api.ListFridges)
		case "a":
			m.naming = true
			m.status = ""
		case "enter":
			if item, ok := m.pane.current(); ok {
				return m, m.activate(domain.FridgeFrom(item))
			}
		case "esc":
			return m, navigate(viewHome)
		}
	}
	return m, nil
}

func (m fridgesModel) updateNaming(msg tea.KeyMsg) (fridgesModel, tea.Cmd) {
	if m.creating {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.naming, m.name, m.status = false, "", ""
	case "enter":
		name, err := forms.FridgeForm{Name: m.name}.Validate()
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.creating = true
		m.status = ""
		api := m.api
		return m, func() tea.Msg {
			payload, err := api.CreateFridge(context.Background(), name)
			return fridgeCreatedMsg{payload: payload, err: err}
		}
	default:
		m.name = editKey(m.name, msg)
	}
	return m, nil
}

func (m fridgesModel) activate(f domain.Fridge) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		err := s.SetActiveFridge(context.Background(), f.ID)
		return activeFridgeSetMsg{id: f.ID, name: f.Name, err: err}
	}
}

func (m fridgesModel) editing() bool {
	return m.naming
}

func (m fridgesModel) View() string {
	var b strings.Builder
	rows := m.height - 2
	if m.naming {
		b.WriteString(renderField("new fridge", m.name, "name", true, false, m.frame) + "\n")
		switch {
		case m.creating:
			b.WriteString(" " + dimStyle.Render("creating...") + "\n")
		case m.status != "":
			b.WriteString(" " + errorStyle.Render(m.status) + "\n")
		default:
			b.WriteString("\n")
		}
		rows -= 2
	}

	active := m.session.Snapshot().ActiveFridge
	b.WriteString(m.pane.render(rows, "no fridges yet, press a to create one", func(item any, cur bool) string {
		f := domain.FridgeFrom(item)
		name := normalStyle.Render(truncStr(f.Name, 40))
		if cur {
			name = selectedStyle.Render(truncStr(f.Name, 40))
		}
		mark := "  "
		if f.ID != "" && f.ID == active {
			mark = okStyle.Render("● ")
		}
		return fmt.Sprintf(" %s %s%s  %s", cursorMark(cur), mark, name, roleStyle(f.Role).Render(f.Role))
	}))
	return b.String()
}

func (m fridgesModel) helpKeys() string {
	if m.naming {
		return helpBar(helpEntry("enter", "create"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("j/k", "nav"), helpEntry("enter", "use"), helpEntry("a", "new"), helpEntry("r", "refresh"), helpEntry("esc", "back"))
}
