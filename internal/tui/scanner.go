package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fridge/internal/browser"
	"github.com/naveenspark/fridge/internal/scan"
	"github.com/naveenspark/fridge/pkg/client"
)

// ScanRecorder counts scan outcomes.
type ScanRecorder interface {
	RecordScan(outcome string)
}

type connectDoneMsg struct {
	code    string
	message string
	err     error
}

type scannerModel struct {
	api      API
	rec      ScanRecorder
	pipeline scan.Pipeline
	buffer   string // keyboard-wedge input collected until enter
	// repeat is set when a scanner burst arrives while a code is captured.
	// The enter that ends the burst is not a confirmation.
	repeat bool
	notice   string
	noticeOK bool
	frame    int

	copyText  func(string) error
	pasteText func() (string, error)
	openURL   func(string) error
}

func newScannerModel(api API, rec ScanRecorder) scannerModel {
	return scannerModel{
		api:       api,
		rec:       rec,
		copyText:  clipboard.WriteAll,
		pasteText: clipboard.ReadAll,
		openURL:   browser.Open,
	}
}

func (m *scannerModel) mount() tea.Cmd {
	m.buffer, m.notice, m.noticeOK = "", "", false
	if err := m.pipeline.Open(); err != nil {
		m.notice = "a code is still being sent"
	}
	return nil
}

func (m *scannerModel) dismiss() {
	if m.pipeline.State() != scan.Submitting {
		m.pipeline.Close()
	}
}

func (m scannerModel) Update(msg tea.Msg) (scannerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case shimmerTickMsg:
		m.frame++

	case connectDoneMsg:
		if err := m.pipeline.Finish(msg.err); err != nil {
			// The screen was closed while the code was in flight.
			m.pipeline.Close()
		}
		if msg.err != nil {
			m.rec.RecordScan("failed")
			m.notice, m.noticeOK = client.ErrorMessage(msg.err), false
			return m, nil
		}
		m.rec.RecordScan("submitted")
		m.notice, m.noticeOK = fmt.Sprintf("%s: %s", msg.code, msg.message), true
		m.pipeline.Open() //nolint:errcheck // not submitting after Finish
		return m, nil

	case tea.KeyMsg:
		switch m.pipeline.State() {
		case scan.Captured:
			return m.updateCaptured(msg)
		case scan.Submitting:
			return m, nil
		}
		return m.updateScanning(msg)
	}
	return m, nil
}

func (m scannerModel) updateScanning(msg tea.KeyMsg) (scannerModel, tea.Cmd) {
	switch key := msg.String(); key {
	case "esc":
		m.pipeline.Close()
		return m, navigate(viewHome)
	case "enter":
		data := strings.TrimSpace(m.buffer)
		m.buffer = ""
		if data == "" {
			return m, nil
		}
		m.decode(data)
	case "ctrl+v":
		text, err := m.pasteText()
		if err != nil {
			m.notice, m.noticeOK = "clipboard unavailable: "+err.Error(), false
			return m, nil
		}
		if data := strings.TrimSpace(text); data != "" {
			m.decode(data)
		}
	default:
		m.buffer = editKey(m.buffer, msg)
	}
	return m, nil
}

// decode feeds one decoded code into the pipeline.
func (m *scannerModel) decode(data string) {
	r := scan.Result{Data: data, Type: scan.Classify(data)}
	switch m.pipeline.Decode(r) {
	case scan.Rejected:
		m.rec.RecordScan("rejected")
		m.notice, m.noticeOK = fmt.Sprintf("unsupported barcode (%s), scan an EAN-13 or EAN-8", r.Type), false
	case scan.Accepted:
		m.rec.RecordScan("accepted")
		m.notice, m.repeat = "", false
	}
}

func (m scannerModel) updateCaptured(msg tea.KeyMsg) (scannerModel, tea.Cmd) {
	code := m.pipeline.Captured().Data
	key := msg.String()
	if msg.Type == tea.KeyRunes && key != "c" && key != "o" {
		m.repeat = true
		m.notice, m.noticeOK = "a code is already captured, press enter to send it", false
		return m, nil
	}
	if key == "enter" && m.repeat {
		m.repeat = false
		return m, nil
	}
	m.repeat = false

	switch key {
	case "enter":
		r, err := m.pipeline.Confirm()
		if errors.Is(err, scan.ErrBusy) {
			return m, nil
		}
		if err != nil {
			m.notice, m.noticeOK = err.Error(), false
			return m, nil
		}
		m.notice = ""
		api := m.api
		return m, func() tea.Msg {
			message, err := api.Connect(context.Background(), r.Data)
			return connectDoneMsg{code: r.Data, message: message, err: err}
		}
	case "esc":
		m.pipeline.Cancel() //nolint:errcheck // state is Captured
		m.pipeline.Open()   //nolint:errcheck // not submitting
		m.notice = ""
	case "c":
		if err := m.copyText(code); err != nil {
			m.notice, m.noticeOK = "copy failed: "+err.Error(), false
		} else {
			m.notice, m.noticeOK = "copied "+code, true
		}
	case "o":
		if err := m.openURL(browser.ProductURL(code)); err != nil {
			m.notice, m.noticeOK = "could not open the browser: "+err.Error(), false
		}
	}
	return m, nil
}

func (m scannerModel) editing() bool {
	return m.pipeline.State() == scan.Scanning
}

func (m scannerModel) View() string {
	var b strings.Builder
	b.WriteString("\n")

	switch m.pipeline.State() {
	case scan.Captured, scan.Submitting:
		r := m.pipeline.Captured()
		body := metaStyle.Render("code") + "  " + codeStyle.Render(r.Data) + "\n" +
			metaStyle.Render("type") + "  " + normalStyle.Render(r.Type)
		if m.pipeline.State() == scan.Submitting {
			body += "\n\n" + dimStyle.Render("sending...")
		} else {
			body += "\n\n" + helpEntry("enter", "send") + "  " + helpEntry("esc", "discard")
		}
		b.WriteString(dialogStyle.Render(body) + "\n")
	default:
		b.WriteString(" " + metaStyle.Render("scan a barcode or type it and press enter") + "\n\n")
		b.WriteString(" " + inputPromptStyle.Render("> "))
		if m.buffer == "" {
			b.WriteString(inputPlaceholderStyle.Render("waiting for a code..."))
		} else {
			b.WriteString(selectedStyle.Render(m.buffer))
		}
		if (m.frame/4)%2 == 0 {
			b.WriteString(accentStyle.Render("█"))
		}
		b.WriteString("\n")
	}

	if m.notice != "" {
		style := errorStyle
		if m.noticeOK {
			style = okStyle
		}
		b.WriteString("\n " + style.Render(m.notice) + "\n")
	}
	return b.String()
}

func (m scannerModel) helpKeys() string {
	if m.pipeline.State() == scan.Captured {
		return helpBar(helpEntry("enter", "send"), helpEntry("esc", "discard"), helpEntry("c", "copy"), helpEntry("o", "open"))
	}
	return helpBar(helpEntry("enter", "decode"), helpEntry("ctrl+v", "paste"), helpEntry("esc", "back"))
}
