package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fridge/internal/forms"
	"github.com/naveenspark/fridge/pkg/client"
)

type itemField int

const (
	itemProduct itemField = iota
	itemName
	itemAmount
	itemUnit
	itemBestBefore
	itemOpenDate
	numItemFields
)

type itemAddedMsg struct {
	message string
	err     error
}

type addItemModel struct {
	api      API
	session  Session
	products picker
	form     forms.FridgeItemForm
	focus    itemField
	busy     bool
	status   string
	frame    int
	height   int
}

func newAddItemModel(api API, s Session) addItemModel {
	return addItemModel{
		api:      api,
		session:  s,
		products: newPicker("product", listProductPicker, api.ListProducts),
	}
}

func (m *addItemModel) mount() tea.Cmd {
	m.form = forms.FridgeItemForm{}
	m.focus, m.status, m.busy = itemProduct, "", false
	return m.products.mount()
}

func (m *addItemModel) dismiss() {
	m.products.pane.dismiss()
}

func (m addItemModel) Update(msg tea.Msg) (addItemModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case shimmerTickMsg:
		m.frame++
	case listMsg:
		m.products.pane.resolve(msg)

	case itemAddedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = client.ErrorMessage(msg.err)
			return m, nil
		}
		return m, tea.Batch(flash(msg.message, false), navigate(viewFridge))

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if m.products.open {
			picked, cmd := m.products.handleKey(msg.String())
			if picked {
				m.form.PickProduct(m.products.selected)
				m.focus = itemAmount
			}
			return m, cmd
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m addItemModel) updateKeys(msg tea.KeyMsg) (addItemModel, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+s":
		return m.submit()
	case "esc":
		return m, navigate(viewHome)
	case "tab", "down":
		m.focus = (m.focus + 1) % numItemFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numItemFields) % numItemFields
	case "enter":
		if m.focus == itemProduct {
			m.products.open = true
			return m, nil
		}
		if m.focus == itemOpenDate {
			return m.submit()
		}
		m.focus++
	case "t":
		if m.focus == itemProduct {
			return m, m.products.retry()
		}
		m.edit(msg)
	default:
		m.edit(msg)
	}
	return m, nil
}

func (m *addItemModel) edit(msg tea.KeyMsg) {
	switch m.focus {
	case itemName:
		m.form.CustomName = editKey(m.form.CustomName, msg)
	case itemAmount:
		m.form.Amount = editKey(m.form.Amount, msg)
	case itemBestBefore:
		m.form.BestBefore = editKey(m.form.BestBefore, msg)
	case itemOpenDate:
		m.form.OpenDate = editKey(m.form.OpenDate, msg)
	}
}

func (m addItemModel) submit() (addItemModel, tea.Cmd) {
	req, err := m.form.Validate(m.session.Snapshot().ActiveFridge)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.busy = true
	m.status = ""
	api := m.api
	return m, func() tea.Msg {
		payload, err := api.AddFridgeItem(context.Background(), req)
		if err != nil {
			return itemAddedMsg{err: err}
		}
		return itemAddedMsg{message: client.MessageOf(payload, "item added")}
	}
}

func (m addItemModel) editing() bool {
	if m.products.open {
		return false
	}
	switch m.focus {
	case itemName, itemAmount, itemBestBefore, itemOpenDate:
		return true
	}
	return false
}

func (m addItemModel) View() string {
	if m.products.open {
		return m.products.view(m.height)
	}
	var b strings.Builder
	b.WriteString("\n")
	if m.session.Snapshot().ActiveFridge == "" {
		b.WriteString(" " + warnStyle.Render("no active fridge, choose one from the fridges screen") + "\n\n")
	}
	b.WriteString(m.products.field(m.focus == itemProduct) + "\n")
	b.WriteString(renderField("name", m.form.CustomName, "custom name (optional)", m.focus == itemName, false, m.frame) + "\n")
	b.WriteString(renderField("amount", m.form.Amount, "e.g. 1 or 0,5", m.focus == itemAmount, false, m.frame) + "\n")

	unit := inputPlaceholderStyle.Render("follows the product")
	if !m.form.Unit.IsZero() {
		unit = normalStyle.Render(m.form.Unit.Label)
	} else if !m.form.Product.IsZero() {
		unit = warnStyle.Render("product has no unit")
	}
	prefix := "   "
	if m.focus == itemUnit {
		prefix = " " + accentStyle.Render("▸") + " "
	}
	b.WriteString(prefix + metaStyle.Render(padLabel("unit")) + " " + unit + "\n")

	b.WriteString(renderField("best before", m.form.BestBefore, "YYYY-MM-DD", m.focus == itemBestBefore, false, m.frame) + "\n")
	b.WriteString(renderField("opened", m.form.OpenDate, "YYYY-MM-DD", m.focus == itemOpenDate, false, m.frame) + "\n\n")
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("saving...") + "\n")
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m addItemModel) helpKeys() string {
	if m.products.open {
		return m.products.helpKeys()
	}
	return helpBar(helpEntry("tab", "next"), helpEntry("enter", "choose"), helpEntry("ctrl+s", "save"), helpEntry("esc", "cancel"))
}

