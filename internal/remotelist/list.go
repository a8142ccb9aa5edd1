// Package remotelist holds the state of a screen that shows a list fetched
// from the API: loading, refreshing, error banner and last good items.
//
// Fetches run outside the UI loop. Each one is tagged with a Ticket, and a
// result is only applied if its ticket is the latest one and the screen has
// not been dismissed in the meantime.
package remotelist

import (
	"context"

	"github.com/naveenspark/fridge/pkg/client"
)

// DefaultError is shown when a failure carries no message.
const DefaultError = "failed to load the list"

// Ticket identifies one fetch.
type Ticket struct {
	gen     uint64
	refresh bool
}

// Refresh reports whether the fetch was started as a pull-to-refresh.
func (t Ticket) Refresh() bool { return t.refresh }

// Result is the outcome of one fetch.
type Result[T any] struct {
	Ticket Ticket
	Items  []T
	Err    error
}

type List[T any] struct {
	Items      []T
	Loading    bool
	Refreshing bool
	Err        string

	gen       uint64
	dismissed bool
}

// Begin starts a fetch. refresh keeps the list on screen with a refreshing
// indicator; otherwise Loading is set.
func (l *List[T]) Begin(refresh bool) Ticket {
	l.gen++
	l.dismissed = false
	l.Err = ""
	if refresh {
		l.Refreshing = true
	} else {
		l.Loading = true
	}
	return Ticket{gen: l.gen, refresh: refresh}
}

// Resolve applies r and reports whether it was applied. Results for an older
// ticket or a dismissed list are dropped.
func (l *List[T]) Resolve(r Result[T]) bool {
	if l.dismissed || r.Ticket.gen != l.gen {
		return false
	}
	l.Loading = false
	l.Refreshing = false
	if r.Err != nil {
		l.Err = client.ErrorMessage(r.Err)
		if l.Err == "" {
			l.Err = DefaultError
		}
		return true
	}
	l.Items = r.Items
	if l.Items == nil {
		l.Items = []T{}
	}
	l.Err = ""
	return true
}

// Set replaces the items directly, without a fetch.
func (l *List[T]) Set(items []T) {
	l.gen++
	l.Loading = false
	l.Refreshing = false
	l.Err = ""
	l.Items = items
}

// Prepend puts item at the head of the list.
func (l *List[T]) Prepend(item T) {
	l.Items = append([]T{item}, l.Items...)
}

// Dismiss marks the list's screen as gone. Pending results are dropped.
func (l *List[T]) Dismiss() {
	l.dismissed = true
	l.Loading = false
	l.Refreshing = false
}

// Revive undoes Dismiss without starting a fetch.
func (l *List[T]) Revive() {
	l.dismissed = false
}

func (l List[T]) Dismissed() bool { return l.dismissed }

// Fetch runs fn and packages its outcome for t.
func Fetch[T any](ctx context.Context, t Ticket, fn func(context.Context) ([]T, error)) Result[T] {
	items, err := fn(ctx)
	return Result[T]{Ticket: t, Items: items, Err: err}
}
