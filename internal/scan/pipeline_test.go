package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	calls []string
	msg   string
	err   error
}

func (f *fakeSubmitter) Connect(_ context.Context, ean string) (string, error) {
	f.calls = append(f.calls, ean)
	return f.msg, f.err
}

func TestDecode_EAN13Captured(t *testing.T) {
	var p Pipeline
	require.NoError(t, p.Open())

	out := p.Decode(Result{Data: "5901234123457", Type: "ean13"})

	assert.Equal(t, Accepted, out)
	assert.Equal(t, Captured, p.State())
	assert.Equal(t, "5901234123457", p.Captured().Data)
}

func TestDecode_Code128Rejected(t *testing.T) {
	var p Pipeline
	require.NoError(t, p.Open())

	out := p.Decode(Result{Data: "ABC-123", Type: "code128"})

	assert.Equal(t, Rejected, out)
	assert.Equal(t, Scanning, p.State())

	assert.Equal(t, Accepted, p.Decode(Result{Data: "96385074", Type: "org.gs1.EAN-8"}), "guard stays armed after a rejection")
}

func TestDecode_IgnoredWhenNotScanning(t *testing.T) {
	var p Pipeline
	assert.Equal(t, Ignored, p.Decode(Result{Data: "5901234123457", Type: "ean13"}))
	assert.Equal(t, Idle, p.State())
}

func TestDebounce_SingleSubmission(t *testing.T) {
	var p Pipeline
	sub := &fakeSubmitter{msg: "linked"}
	require.NoError(t, p.Open())

	ev := Result{Data: "5901234123457", Type: "ean13"}
	assert.Equal(t, Accepted, p.Decode(ev))
	assert.Equal(t, Ignored, p.Decode(ev))

	msg, err := p.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "linked", msg)

	assert.Equal(t, Ignored, p.Decode(ev), "no re-capture until reopened")
	_, err = p.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrState)

	assert.Equal(t, []string{"5901234123457"}, sub.calls)
}

func TestConfirm_BusyWhileSubmitting(t *testing.T) {
	var p Pipeline
	require.NoError(t, p.Open())
	p.Decode(Result{Data: "5901234123457", Type: "ean13"})

	_, err := p.Confirm()
	require.NoError(t, err)
	_, err = p.Confirm()
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, p.Open(), ErrBusy)
}

func TestFinish_FailureReturnsToCaptured(t *testing.T) {
	var p Pipeline
	sub := &fakeSubmitter{err: errors.New("HTTP 500")}
	require.NoError(t, p.Open())
	p.Decode(Result{Data: "5901234123457", Type: "ean13"})

	_, err := p.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.Equal(t, Captured, p.State())
	assert.Equal(t, "5901234123457", p.Captured().Data)

	sub.err = nil
	_, err = p.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, Idle, p.State())
	assert.Len(t, sub.calls, 2)
}

func TestCancel(t *testing.T) {
	var p Pipeline
	assert.ErrorIs(t, p.Cancel(), ErrState)

	require.NoError(t, p.Open())
	p.Decode(Result{Data: "5901234123457", Type: "ean13"})
	require.NoError(t, p.Cancel())
	assert.Equal(t, Idle, p.State())

	require.NoError(t, p.Open())
	assert.Equal(t, Accepted, p.Decode(Result{Data: "5901234123457", Type: "ean13"}), "reopen re-arms")
}

func TestClose(t *testing.T) {
	var p Pipeline
	require.NoError(t, p.Open())
	p.Close()
	assert.Equal(t, Idle, p.State())
	assert.Equal(t, Ignored, p.Decode(Result{Data: "5901234123457", Type: "ean13"}))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5901234123457", "ean13"},
		{"5901234123458", "code128"},
		{"96385074", "ean8"},
		{"96385075", "code128"},
		{"12345", "code128"},
		{"59012341234A7", "code128"},
		{"", "code128"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.in), "Classify(%q)", tt.in)
	}
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "rejected", Rejected.String())
}
