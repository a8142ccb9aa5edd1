package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fridge/internal/selection"
	"github.com/naveenspark/fridge/pkg/domain"
)

// productsModel browses the product catalog.
type productsModel struct {
	api    API
	pane   listPane
	height int
}

func newProductsModel(api API) productsModel {
	return productsModel{api: api, pane: newListPane(listCatalog)}
}

func (m *productsModel) mount() tea.Cmd {
	return m.pane.load(false, m.api.ListProducts)
}

func (m productsModel) Update(msg tea.Msg) (productsModel, tea.Cmd) {
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
			return m, m.pane.load(true, m.api.ListProducts)
		case "t":
			return m, m.pane.load(false, m.api.ListProducts)
		case "n":
			return m, navigate(viewAddProduct)
		case "esc":
			return m, navigate(viewHome)
		}
	}
	return m, nil
}

func (m productsModel) View() string {
	return m.pane.render(m.height, "the catalog is empty, press n to add a product", func(item any, cur bool) string {
		p := domain.ProductFrom(item)
		name := normalStyle.Render(fmt.Sprintf("%-30s", truncStr(p.Name, 30)))
		if cur {
			name = selectedStyle.Render(fmt.Sprintf("%-30s", truncStr(p.Name, 30)))
		}
		line := fmt.Sprintf(" %s %s", cursorMark(cur), name)
		if p.Type != nil {
			line += " " + metaStyle.Render(fmt.Sprintf("%-14s", truncStr(selection.Normalize(p.Type).Label, 14)))
		}
		if p.EAN != "" {
			line += " " + dimStyle.Render(p.EAN)
		}
		return line
	})
}

func (m productsModel) helpKeys() string {
	return helpBar(helpEntry("j/k", "nav"), helpEntry("n", "new"), helpEntry("r", "refresh"), helpEntry("esc", "back"))
}
