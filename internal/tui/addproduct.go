package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fridge/internal/forms"
	"github.com/naveenspark/fridge/pkg/client"
)

type productField int

const (
	productName productField = iota
	productEAN
	productType
	productUnit
	numProductFields
)

type productCreatedMsg struct {
	message string
	err     error
}

type addProductModel struct {
	api    API
	name   string
	ean    string
	types  picker
	units  picker
	focus  productField
	busy   bool
	status string
	frame  int
	height int
}

func newAddProductModel(api API) addProductModel {
	return addProductModel{
		api:   api,
		types: newPicker("type", listProductTypes, api.ListProductTypes),
		units: newPicker("unit", listUnits, api.ListUnits),
	}
}

func (m *addProductModel) mount() tea.Cmd {
	m.name, m.ean, m.status, m.focus, m.busy = "", "", "", productName, false
	return tea.Batch(m.types.mount(), m.units.mount())
}

func (m *addProductModel) dismiss() {
	m.types.pane.dismiss()
	m.units.pane.dismiss()
}

// openPicker returns the picker whose list is showing, if any.
func (m *addProductModel) openPicker() *picker {
	switch {
	case m.types.open:
		return &m.types
	case m.units.open:
		return &m.units
	}
	return nil
}

func (m addProductModel) Update(msg tea.Msg) (addProductModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case shimmerTickMsg:
		m.frame++
	case listMsg:
		m.types.pane.resolve(msg)
		m.units.pane.resolve(msg)

	case productCreatedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = client.ErrorMessage(msg.err)
			return m, nil
		}
		return m, tea.Batch(flash(msg.message, false), navigate(viewHome))

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if p := m.openPicker(); p != nil {
			_, cmd := p.handleKey(msg.String())
			return m, cmd
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m addProductModel) updateKeys(msg tea.KeyMsg) (addProductModel, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+s":
		return m.submit()
	case "esc":
		return m, navigate(viewHome)
	case "tab", "down":
		m.focus = (m.focus + 1) % numProductFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numProductFields) % numProductFields
	case "enter":
		switch m.focus {
		case productType:
			m.types.open = true
		case productUnit:
			m.units.open = true
		default:
			m.focus++
		}
	case "t":
		switch m.focus {
		case productType:
			return m, m.types.retry()
		case productUnit:
			return m, m.units.retry()
		}
		m.edit(msg)
	default:
		m.edit(msg)
	}
	return m, nil
}

func (m *addProductModel) edit(msg tea.KeyMsg) {
	switch m.focus {
	case productName:
		m.name = editKey(m.name, msg)
	case productEAN:
		m.ean = editKey(m.ean, msg)
	}
}

func (m addProductModel) submit() (addProductModel, tea.Cmd) {
	req, err := forms.ProductForm{
		Name: m.name,
		EAN:  m.ean,
		Type: m.types.selected,
		Unit: m.units.selected,
	}.Validate()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.busy = true
	m.status = ""
	api := m.api
	return m, func() tea.Msg {
		payload, err := api.CreateProduct(context.Background(), req)
		if err != nil {
			return productCreatedMsg{err: err}
		}
		return productCreatedMsg{message: client.MessageOf(payload, "product created: "+req.Name)}
	}
}

func (m addProductModel) editing() bool {
	return m.openPicker() == nil && (m.focus == productName || m.focus == productEAN)
}

func (m addProductModel) View() string {
	if p := m.openPicker(); p != nil {
		return p.view(m.height)
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(renderField("name", m.name, "product name", m.focus == productName, false, m.frame) + "\n")
	b.WriteString(renderField("ean", m.ean, "barcode (optional)", m.focus == productEAN, false, m.frame) + "\n")
	b.WriteString(m.types.field(m.focus == productType) + "\n")
	b.WriteString(m.units.field(m.focus == productUnit) + "\n\n")
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("saving...") + "\n")
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m addProductModel) helpKeys() string {
	if p := m.openPicker(); p != nil {
		return p.helpKeys()
	}
	return helpBar(helpEntry("tab", "next"), helpEntry("enter", "choose"), helpEntry("ctrl+s", "save"), helpEntry("esc", "cancel"))
}
