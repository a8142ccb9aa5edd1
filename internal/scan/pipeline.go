// Package scan implements the barcode capture flow: accept one EAN code per
// scanning session, hold it for confirmation, and submit it at most once.
package scan

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a submission is already in flight.
	ErrBusy = errors.New("scan: submission already in flight")
	// ErrState is returned for a transition the current state does not allow.
	ErrState = errors.New("scan: invalid state")
)

type State int

const (
	Idle State = iota
	Scanning
	Captured
	Submitting
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Captured:
		return "captured"
	case Submitting:
		return "submitting"
	}
	return "idle"
}

// Result is one decode event from a barcode source.
type Result struct {
	Data string
	Type string
}

type Outcome int

const (
	Ignored Outcome = iota
	Rejected
	Accepted
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Accepted:
		return "accepted"
	}
	return "ignored"
}

var symbologies = map[string]bool{
	"ean13":          true,
	"ean8":           true,
	"org.gs1.EAN-13": true,
	"org.gs1.EAN-8":  true,
}

// Supported reports whether codes of type t are accepted.
func Supported(t string) bool {
	return symbologies[t]
}

// Pipeline is the scan state machine. It is not safe for concurrent use;
// the UI loop owns it.
type Pipeline struct {
	state    State
	armed    bool
	captured Result
}

func (p *Pipeline) State() State     { return p.state }
func (p *Pipeline) Captured() Result { return p.captured }

// Open starts a scanning session and re-arms the debounce guard.
func (p *Pipeline) Open() error {
	if p.state == Submitting {
		return ErrBusy
	}
	p.state = Scanning
	p.armed = true
	p.captured = Result{}
	return nil
}

// Decode handles one decode event. Only the first supported code of a
// scanning session is captured; later events are ignored until the pipeline
// is opened again.
func (p *Pipeline) Decode(r Result) Outcome {
	if p.state != Scanning || !p.armed {
		return Ignored
	}
	if !Supported(r.Type) {
		return Rejected
	}
	p.armed = false
	p.captured = r
	p.state = Captured
	return Accepted
}

// Cancel discards the captured code without submitting it.
func (p *Pipeline) Cancel() error {
	if p.state != Captured {
		return fmt.Errorf("cancel from %s: %w", p.state, ErrState)
	}
	p.state = Idle
	p.captured = Result{}
	return nil
}

// Close ends the session from any state.
func (p *Pipeline) Close() {
	p.state = Idle
	p.armed = false
	p.captured = Result{}
}

// Confirm moves the captured code to Submitting and returns it.
func (p *Pipeline) Confirm() (Result, error) {
	switch p.state {
	case Submitting:
		return Result{}, ErrBusy
	case Captured:
		p.state = Submitting
		return p.captured, nil
	}
	return Result{}, fmt.Errorf("confirm from %s: %w", p.state, ErrState)
}

// Finish records the submission outcome. On failure the same code stays
// captured so the user can retry it.
func (p *Pipeline) Finish(err error) error {
	if p.state != Submitting {
		return fmt.Errorf("finish from %s: %w", p.state, ErrState)
	}
	if err != nil {
		p.state = Captured
		return nil
	}
	p.state = Idle
	p.captured = Result{}
	return nil
}

// Submitter sends a confirmed code to the backend.
type Submitter interface {
	Connect(ctx context.Context, ean string) (string, error)
}

// Submit confirms the captured code, sends it and finishes the pipeline.
// It returns the server's message.
func (p *Pipeline) Submit(ctx context.Context, s Submitter) (string, error) {
	r, err := p.Confirm()
	if err != nil {
		return "", err
	}
	msg, err := s.Connect(ctx, r.Data)
	if ferr := p.Finish(err); ferr != nil {
		return "", ferr
	}
	if err != nil {
		return "", fmt.Errorf("scan.Submit: %w", err)
	}
	return msg, nil
}
