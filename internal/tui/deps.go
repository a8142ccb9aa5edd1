package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fridge/internal/session"
	"github.com/naveenspark/fridge/pkg/client"
)

// API is the subset of *client.Client the screens use.
type API interface {
	ListFridges(ctx context.Context) ([]any, error)
	CreateFridge(ctx context.Context, name string) (any, error)
	ListFridgeItems(ctx context.Context, fridgeID string) ([]any, error)
	AddFridgeItem(ctx context.Context, item client.AddFridgeItemRequest) (any, error)
	ListProducts(ctx context.Context) ([]any, error)
	CreateProduct(ctx context.Context, product client.CreateProductRequest) (any, error)
	ListProductTypes(ctx context.Context) ([]any, error)
	ListUnits(ctx context.Context) ([]any, error)
	Connect(ctx context.Context, ean string) (string, error)
}

// Session is the subset of *session.Manager the screens use.
type Session interface {
	Initialize(ctx context.Context)
	Login(ctx context.Context, identity, secret string) (string, error)
	Register(ctx context.Context, identity, secret string) (string, error)
	Logout(ctx context.Context) error
	SetActiveFridge(ctx context.Context, id string) error
	Snapshot() session.State
	TokenExpiry() (time.Time, bool)
}

// -- cross-screen messages --

// sessionReadyMsg is sent once the persisted session has been read.
type sessionReadyMsg struct{}

type navigateMsg struct {
	to view
}

func navigate(to view) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

func flash(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return flashMsg{text: text, isErr: isErr} }
}

// flashMsg shows a one-line status under the body until the next flash.
type flashMsg struct {
	text  string
	isErr bool
}

type activeFridgeSetMsg struct {
	id   string
	name string
	err  error
}
