package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/naveenspark/fridge/internal/scan"
	"github.com/naveenspark/fridge/pkg/client"
)

const validEAN13 = "4006381333931"

func scannerApp(t *testing.T, api *fakeAPI) App {
	t.Helper()
	a, _ := loggedInApp(t, api)
	a = press(t, a, "3")
	if a.view != viewScanner {
		t.Fatalf("expected scanner, got %d", a.view)
	}
	if a.scanner.pipeline.State() != scan.Scanning {
		t.Fatalf("opening the scanner should start scanning, got %s", a.scanner.pipeline.State())
	}
	return a
}

func TestScannerCapturesTypedCode(t *testing.T) {
	a := scannerApp(t, &fakeAPI{})
	a = press(t, a, validEAN13, "enter")

	if a.scanner.pipeline.State() != scan.Captured {
		t.Fatalf("expected Captured, got %s", a.scanner.pipeline.State())
	}
	r := a.scanner.pipeline.Captured()
	if r.Data != validEAN13 || r.Type != "ean13" {
		t.Errorf("captured %+v", r)
	}
	if !strings.Contains(a.View(), validEAN13) {
		t.Error("dialog should show the code")
	}
	if got := a.scanner.rec.(countingScans)["accepted"]; got != 1 {
		t.Errorf("accepted scans = %d, want 1", got)
	}
}

func TestScannerRejectsUnsupportedCode(t *testing.T) {
	a := scannerApp(t, &fakeAPI{})
	a = press(t, a, "ABC-123", "enter")

	if a.scanner.pipeline.State() != scan.Scanning {
		t.Fatalf("rejected code should keep scanning, got %s", a.scanner.pipeline.State())
	}
	if !strings.Contains(a.View(), "unsupported barcode (code128)") {
		t.Errorf("expected notice, got %q", a.View())
	}

	// The guard is still armed: a valid code is captured next.
	a = press(t, a, validEAN13, "enter")
	if a.scanner.pipeline.State() != scan.Captured {
		t.Errorf("expected Captured after a valid code, got %s", a.scanner.pipeline.State())
	}
}

func TestScannerSubmitSuccessRearms(t *testing.T) {
	api := &fakeAPI{connectMsg: "linked"}
	a := scannerApp(t, api)
	a = press(t, a, validEAN13, "enter", "enter")

	if len(api.connected) != 1 || api.connected[0] != validEAN13 {
		t.Fatalf("Connect calls = %v", api.connected)
	}
	if a.scanner.pipeline.State() != scan.Scanning {
		t.Errorf("after success the scanner should be ready again, got %s", a.scanner.pipeline.State())
	}
	if !strings.Contains(a.View(), validEAN13+": linked") {
		t.Errorf("expected success notice, got %q", a.View())
	}
}

func TestScannerSubmitFailureKeepsCode(t *testing.T) {
	api := &fakeAPI{connectErr: &client.APIError{StatusCode: 404, Message: "unknown product"}}
	a := scannerApp(t, api)
	a = press(t, a, validEAN13, "enter", "enter")

	if a.scanner.pipeline.State() != scan.Captured {
		t.Fatalf("failure should return to Captured, got %s", a.scanner.pipeline.State())
	}
	if a.scanner.pipeline.Captured().Data != validEAN13 {
		t.Error("the same code should stay captured")
	}
	if !strings.Contains(a.View(), "unknown product") {
		t.Errorf("expected error notice, got %q", a.View())
	}

	api.connectErr = nil
	a = press(t, a, "enter")
	if len(api.connected) != 2 {
		t.Errorf("retry should send again, Connect calls = %d", len(api.connected))
	}
}

func TestScannerSingleSubmissionInFlight(t *testing.T) {
	api := &fakeAPI{}
	a := scannerApp(t, api)
	a = press(t, a, validEAN13, "enter")

	// Confirm without running the command, then press enter again.
	model, first := a.Update(key("enter"))
	a = model.(App)
	if a.scanner.pipeline.State() != scan.Submitting {
		t.Fatalf("expected Submitting, got %s", a.scanner.pipeline.State())
	}
	model, second := a.Update(key("enter"))
	a = model.(App)
	if second != nil {
		t.Error("a second enter while submitting must not start another request")
	}
	a = drain(t, a, first)
	if len(api.connected) != 1 {
		t.Errorf("Connect calls = %d, want 1", len(api.connected))
	}
}

func TestScannerCancelDiscardsWithoutNetwork(t *testing.T) {
	api := &fakeAPI{}
	a := scannerApp(t, api)
	a = press(t, a, validEAN13, "enter", "esc")

	if a.scanner.pipeline.State() != scan.Scanning {
		t.Errorf("cancel should resume scanning, got %s", a.scanner.pipeline.State())
	}
	if len(api.connected) != 0 {
		t.Error("cancel must not call the API")
	}
	if a.view != viewScanner {
		t.Errorf("cancel should stay on the scanner, got %d", a.view)
	}
}

func TestScannerEscLeaves(t *testing.T) {
	a := scannerApp(t, &fakeAPI{})
	a = press(t, a, "esc")
	if a.view != viewHome {
		t.Errorf("expected home, got %d", a.view)
	}
	if a.scanner.pipeline.State() != scan.Idle {
		t.Errorf("leaving should close the pipeline, got %s", a.scanner.pipeline.State())
	}
}

func TestScannerPasteDecodes(t *testing.T) {
	a := scannerApp(t, &fakeAPI{})
	a.scanner.pasteText = func() (string, error) { return "  96385074\n", nil }
	a = press(t, a, "ctrl+v")

	r := a.scanner.pipeline.Captured()
	if a.scanner.pipeline.State() != scan.Captured || r.Data != "96385074" || r.Type != "ean8" {
		t.Errorf("paste should capture the EAN-8, got %s %+v", a.scanner.pipeline.State(), r)
	}
}

func TestScannerPasteError(t *testing.T) {
	a := scannerApp(t, &fakeAPI{})
	a.scanner.pasteText = func() (string, error) { return "", errors.New("no display") }
	a = press(t, a, "ctrl+v")
	if !strings.Contains(a.View(), "clipboard unavailable: no display") {
		t.Errorf("expected clipboard notice, got %q", a.View())
	}
}

func TestScannerCopyAndOpen(t *testing.T) {
	a := scannerApp(t, &fakeAPI{})
	var copied, opened string
	a.scanner.copyText = func(s string) error { copied = s; return nil }
	a.scanner.openURL = func(u string) error { opened = u; return nil }

	a = press(t, a, validEAN13, "enter", "c", "o")
	if copied != validEAN13 {
		t.Errorf("copied %q", copied)
	}
	if opened != "https://world.openfoodfacts.org/product/"+validEAN13 {
		t.Errorf("opened %q", opened)
	}
	if !strings.Contains(a.View(), "copied "+validEAN13) {
		t.Error("copy should be confirmed")
	}
}

func TestScannerQTypedWhileScanning(t *testing.T) {
	a := scannerApp(t, &fakeAPI{})
	a = press(t, a, "q")
	if a.scanner.buffer != "q" {
		t.Errorf("buffer = %q, want q", a.scanner.buffer)
	}
}

func TestScannerRepeatScanDoesNotConfirm(t *testing.T) {
	api := &fakeAPI{connectMsg: "linked"}
	a := scannerApp(t, api)

	// A wedge scanner types the code and presses enter, twice.
	a = press(t, a, validEAN13, "enter", validEAN13, "enter")
	if len(api.connected) != 0 {
		t.Fatalf("a repeated scan must not send, Connect calls = %v", api.connected)
	}
	if a.scanner.pipeline.State() != scan.Captured {
		t.Fatalf("expected Captured, got %s", a.scanner.pipeline.State())
	}
	if !strings.Contains(a.View(), "already captured") {
		t.Errorf("expected repeat notice, got %q", a.View())
	}

	a = press(t, a, "enter")
	if len(api.connected) != 1 || api.connected[0] != validEAN13 {
		t.Errorf("an explicit enter should send once, Connect calls = %v", api.connected)
	}
}
