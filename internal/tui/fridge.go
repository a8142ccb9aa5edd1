package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fridge/internal/selection"
	"github.com/naveenspark/fridge/pkg/domain"
)

// fridgeModel shows the items of the active fridge.
type fridgeModel struct {
	api      API
	session  Session
	pane     listPane
	fridgeID string
	now      func() time.Time
	height   int
}

func newFridgeModel(api API, s Session) fridgeModel {
	return fridgeModel{api: api, session: s, pane: newListPane(listFridgeItems), now: time.Now}
}

func (m *fridgeModel) mount() tea.Cmd {
	m.fridgeID = m.session.Snapshot().ActiveFridge
	m.pane.cursor = 0
	if m.fridgeID == "" {
		m.pane.list.Revive()
		m.pane.list.Set([]any{})
		return nil
	}
	return m.pane.load(false, m.fetch())
}

func (m fridgeModel) fetch() fetchFunc {
	api, id := m.api, m.fridgeID
	return func(ctx context.Context) ([]any, error) {
		return api.ListFridgeItems(ctx, id)
	}
}

func (m fridgeModel) Update(msg tea.Msg) (fridgeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case listMsg:
		m.pane.resolve(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			m.pane.move(1)
		case "k", "up":
			m.pane.move(-1)
		case "r":
			if m.fridgeID != "" {
				return m, m.pane.load(true, m.fetch())
			}
		case "t":
			if m.fridgeID != "" {
				return m, m.pane.load(false, m.fetch())
			}
		case "f":
			return m, navigate(viewFridges)
		case "a":
			return m, navigate(viewAddItem)
		case "esc":
			return m, navigate(viewHome)
		}
	}
	return m, nil
}

func (m fridgeModel) View() string {
	if m.fridgeID == "" {
		return "\n " + warnStyle.Render("no active fridge") + "\n " + dimStyle.Render("press f to choose one") + "\n"
	}
	today := m.now()
	return m.pane.render(m.height, "this fridge is empty, press a to add an item", func(item any, cur bool) string {
		it := domain.FridgeItemFrom(item)
		name := normalStyle.Render(fmt.Sprintf("%-28s", truncStr(it.Name, 28)))
		if cur {
			name = selectedStyle.Render(fmt.Sprintf("%-28s", truncStr(it.Name, 28)))
		}
		amount := it.Amount
		if it.Unit != nil {
			amount += " " + selection.Normalize(it.Unit).Label
		}
		line := fmt.Sprintf(" %s %s %s", cursorMark(cur), name, metaStyle.Render(fmt.Sprintf("%-12s", amount)))
		if it.BestBefore != "" {
			status := domain.ExpiryStatus(it.BestBefore, today)
			line += " " + expiryStyle(status).Render("best before "+it.BestBefore)
		}
		if it.OpenDate != "" {
			line += "  " + dimStyle.Render("opened "+it.OpenDate)
		}
		return line
	})
}

func (m fridgeModel) helpKeys() string {
	return helpBar(helpEntry("j/k", "nav"), helpEntry("a", "add"), helpEntry("f", "fridges"), helpEntry("r", "refresh"), helpEntry("esc", "back"))
}

// expiryCounts summarises items by status for the title line.
func expiryCounts(items []any, now time.Time) string {
	var warn, expired int
	for _, item := range items {
		switch domain.ExpiryStatus(domain.FridgeItemFrom(item).BestBefore, now) {
		case domain.ExpiryWarning:
			warn++
		case domain.ExpiryExpired:
			expired++
		}
	}
	var parts []string
	if expired > 0 {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("%d expired", expired)))
	}
	if warn > 0 {
		parts = append(parts, warnStyle.Render(fmt.Sprintf("%d expiring", warn)))
	}
	return strings.Join(parts, " ")
}
