package client

import (
	"bytes"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/naveenspark/fridge/internal/logging"
)

// maxLoggedBody caps request and response bodies in debug logs.
const maxLoggedBody = 500

// LoggingTransport logs every request and response passing through it.
type LoggingTransport struct {
	next   http.RoundTripper
	logger logging.Logger
}

// NewLoggingTransport wraps next. A nil next uses http.DefaultTransport.
func NewLoggingTransport(next http.RoundTripper, logger logging.Logger) *LoggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &LoggingTransport{next: next, logger: logger}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	log := t.logger.With(
		"request_id", uuid.NewString(),
		"method", req.Method,
		"url", req.URL.String(),
	)

	reqBody := ""
	if req.GetBody != nil {
		if rc, err := req.GetBody(); err == nil {
			data, _ := io.ReadAll(rc)
			_ = rc.Close()
			reqBody = truncateBody(data)
		}
	}
	log.Info(ctx, "http request", "body", reqBody)

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		log.Error(ctx, "http request failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	data, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	if readErr != nil {
		log.Warn(ctx, "http response body unreadable", "error", readErr)
	}

	attrs := []any{
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"body", truncateBody(data),
	}
	switch {
	case resp.StatusCode >= 500:
		log.Error(ctx, "http response", attrs...)
	case resp.StatusCode >= 400:
		log.Warn(ctx, "http response", attrs...)
	default:
		log.Info(ctx, "http response", attrs...)
	}
	return resp, nil
}

func truncateBody(data []byte) string {
	if utf8.RuneCount(data) <= maxLoggedBody {
		return string(data)
	}
	runes := []rune(string(data))
	return string(runes[:maxLoggedBody]) + "…"
}
