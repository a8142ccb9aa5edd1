package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/fridge/pkg/domain"
)

type view int

const (
	viewLoading view = iota
	viewAuth
	viewHome
	viewFridges
	viewFridge
	viewProducts
	viewAddProduct
	viewAddItem
	viewScanner
)

var viewTitles = map[view]string{
	viewLoading:    "",
	viewAuth:       "",
	viewHome:       "home",
	viewFridges:    "fridges",
	viewFridge:     "fridge",
	viewProducts:   "catalog",
	viewAddProduct: "add product",
	viewAddItem:    "add item",
	viewScanner:    "scanner",
}

// chrome is header(2) + title(1) + flash(1) + help(1).
const chrome = 5

type nopScans struct{}

func (nopScans) RecordScan(string) {}

// App is the root Bubbletea model.
type App struct {
	session    Session
	api        API
	view       view
	auth       authModel
	home       homeModel
	fridges    fridgesModel
	fridge     fridgeModel
	products   productsModel
	addProduct addProductModel
	addItem    addItemModel
	scanner    scannerModel
	fridgeName string // name of the active fridge, when known
	flashText  string
	flashErr   bool
	helpOpen   bool
	now        func() time.Time
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates a new TUI application. rec may be nil.
func NewApp(s Session, api API, rec ScanRecorder) App {
	if rec == nil {
		rec = nopScans{}
	}
	return App{
		session:    s,
		api:        api,
		auth:       newAuthModel(s),
		home:       newHomeModel(s),
		fridges:    newFridgesModel(api, s),
		fridge:     newFridgeModel(api, s),
		products:   newProductsModel(api),
		addProduct: newAddProductModel(api),
		addItem:    newAddItemModel(api, s),
		scanner:    newScannerModel(api, rec),
		now:        time.Now,
	}
}

func (a App) Init() tea.Cmd {
	s := a.session
	return tea.Batch(shimmerTickCmd(), func() tea.Msg {
		s.Initialize(context.Background())
		return sessionReadyMsg{}
	})
}

// route enforces the session guard: loading shows the spinner, no token shows
// auth, and a token on the auth screen moves on to home.
func (a *App) route() tea.Cmd {
	st := a.session.Snapshot()
	switch {
	case st.Loading():
		return a.switchTo(viewLoading)
	case !st.Authenticated():
		if a.view != viewAuth {
			return a.switchTo(viewAuth)
		}
	case a.view == viewLoading || a.view == viewAuth:
		return a.switchTo(viewHome)
	}
	return nil
}

// switchTo leaves the current screen, dropping its pending fetches, and
// mounts the next one.
func (a *App) switchTo(to view) tea.Cmd {
	switch a.view {
	case viewFridges:
		a.fridges.pane.dismiss()
	case viewFridge:
		a.fridge.pane.dismiss()
	case viewProducts:
		a.products.pane.dismiss()
	case viewAddProduct:
		a.addProduct.dismiss()
	case viewAddItem:
		a.addItem.dismiss()
	case viewScanner:
		a.scanner.dismiss()
	}

	a.view = to
	a.helpOpen = false
	switch to {
	case viewAuth:
		a.auth = newAuthModel(a.session)
	case viewHome:
		a.home.cursor = 0
	case viewFridges:
		return a.fridges.mount()
	case viewFridge:
		return a.fridge.mount()
	case viewProducts:
		return a.products.mount()
	case viewAddProduct:
		return a.addProduct.mount()
	case viewAddItem:
		return a.addItem.mount()
	case viewScanner:
		return a.scanner.mount()
	}
	return nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - chrome}
		a.fridges, _ = a.fridges.Update(bodyMsg)
		a.fridge, _ = a.fridge.Update(bodyMsg)
		a.products, _ = a.products.Update(bodyMsg)
		a.addProduct, _ = a.addProduct.Update(bodyMsg)
		a.addItem, _ = a.addItem.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		a.auth, _ = a.auth.Update(msg)
		a.fridges, _ = a.fridges.Update(msg)
		a.addProduct, _ = a.addProduct.Update(msg)
		a.addItem, _ = a.addItem.Update(msg)
		a.scanner, _ = a.scanner.Update(msg)
		return a, shimmerTickCmd()

	case sessionReadyMsg:
		return a, a.route()

	case authDoneMsg:
		a.auth, _ = a.auth.Update(msg)
		if msg.err != nil {
			return a, nil
		}
		a.fridgeName = ""
		return a, a.route()

	case loggedOutMsg:
		var cmd tea.Cmd
		a.home, cmd = a.home.Update(msg)
		a.fridgeName = ""
		a.flashText = ""
		return a, tea.Batch(cmd, a.route())

	case navigateMsg:
		if !a.session.Snapshot().Authenticated() {
			return a, a.route()
		}
		return a, a.switchTo(msg.to)

	case flashMsg:
		a.flashText, a.flashErr = msg.text, msg.isErr
		return a, nil

	case activeFridgeSetMsg:
		a.fridgeName = msg.name
		if msg.err != nil {
			a.flashText, a.flashErr = "active fridge changed but could not be saved: "+msg.err.Error(), true
		} else {
			a.flashText, a.flashErr = "active fridge: "+msg.name, false
		}
		return a, nil

	case connectDoneMsg:
		var cmd tea.Cmd
		a.scanner, cmd = a.scanner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			switch key {
			case "?", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			}
			return a, nil
		}
		a.flashText = ""
		if !a.isEditing() && a.view != viewLoading {
			switch key {
			case "q":
				return a, tea.Quit
			case "?":
				a.helpOpen = true
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewAuth:
		a.auth, cmd = a.auth.Update(msg)
	case viewHome:
		a.home, cmd = a.home.Update(msg)
	case viewFridges:
		a.fridges, cmd = a.fridges.Update(msg)
	case viewFridge:
		a.fridge, cmd = a.fridge.Update(msg)
	case viewProducts:
		a.products, cmd = a.products.Update(msg)
	case viewAddProduct:
		a.addProduct, cmd = a.addProduct.Update(msg)
	case viewAddItem:
		a.addItem, cmd = a.addItem.Update(msg)
	case viewScanner:
		a.scanner, cmd = a.scanner.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewAuth:
		return true
	case viewFridges:
		return a.fridges.editing()
	case viewAddProduct:
		return a.addProduct.editing()
	case viewAddItem:
		return a.addItem.editing()
	case viewScanner:
		return a.scanner.editing()
	}
	return false
}

// activeFridgeLabel names the active fridge, falling back to its id.
func (a App) activeFridgeLabel(id string) string {
	for _, item := range a.fridges.pane.list.Items {
		if f := domain.FridgeFrom(item); f.ID == id {
			return f.Name
		}
	}
	if a.fridgeName != "" {
		return a.fridgeName
	}
	return truncStr(id, 12)
}

func (a App) statusLine() string {
	st := a.session.Snapshot()
	if !st.Authenticated() {
		return ""
	}
	var parts []string
	if st.User != "" {
		parts = append(parts, accentStyle.Render(st.User))
	}
	if st.ActiveFridge != "" {
		parts = append(parts, normalStyle.Render(a.activeFridgeLabel(st.ActiveFridge)))
	} else {
		parts = append(parts, warnStyle.Render("no fridge"))
	}
	if exp, ok := a.session.TokenExpiry(); ok {
		until := formatUntil(exp, a.now())
		if until == "expired" {
			parts = append(parts, errorStyle.Render("session expired"))
		} else {
			parts = append(parts, metaStyle.Render("session "+until))
		}
	}
	return strings.Join(parts, metaStyle.Render(" · "))
}

func centered(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func (a App) title() string {
	switch a.view {
	case viewAuth:
		return " " + titleStyle.Render(a.auth.title())
	case viewFridge:
		t := " " + titleStyle.Render("fridge")
		if id := a.session.Snapshot().ActiveFridge; id != "" {
			t += " " + normalStyle.Render(a.activeFridgeLabel(id))
			if counts := expiryCounts(a.fridge.pane.list.Items, a.now()); counts != "" {
				t += "  " + counts
			}
		}
		return t
	}
	if t := viewTitles[a.view]; t != "" {
		return " " + titleStyle.Render(t)
	}
	return ""
}

func (a App) View() string {
	header := centered(renderShimmerLogo(a.frame), a.width) + "\n" + centered(a.statusLine(), a.width)

	var body, help string
	switch a.view {
	case viewLoading:
		dots := strings.Repeat(".", a.frame%4)
		body = "\n " + dimStyle.Render("loading session"+dots)
		help = helpBar(helpEntry("ctrl+c", "quit"))
	case viewAuth:
		body, help = a.auth.View(), a.auth.helpKeys()
	case viewHome:
		body, help = a.home.View(), a.home.helpKeys()
	case viewFridges:
		body, help = a.fridges.View(), a.fridges.helpKeys()
	case viewFridge:
		body, help = a.fridge.View(), a.fridge.helpKeys()
	case viewProducts:
		body, help = a.products.View(), a.products.helpKeys()
	case viewAddProduct:
		body, help = a.addProduct.View(), a.addProduct.helpKeys()
	case viewAddItem:
		body, help = a.addItem.View(), a.addItem.helpKeys()
	case viewScanner:
		body, help = a.scanner.View(), a.scanner.helpKeys()
	}

	if a.helpOpen {
		body = helpView()
		help = helpBar(helpEntry("esc", "close"), helpEntry("q", "quit"))
	}

	flashLine := ""
	if a.flashText != "" {
		style := okStyle
		if a.flashErr {
			style = errorStyle
		}
		flashLine = " " + style.Render(a.flashText)
	}

	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, a.title(), body, flashLine, help)
}
