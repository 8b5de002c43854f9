package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"", slog.LevelInfo, true},
		{"debug", slog.LevelDebug, true},
		{"WARN", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLevel(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, err == nil)
		})
	}
}

func TestLoggerComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewText(&buf, slog.LevelWarn, "ledger")

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.WithComponent(ComponentPot).Warn("kept", FieldPotID, "p1")
	out := buf.String()
	assert.Contains(t, out, "component=pot")
	assert.Contains(t, out, "pot_id=p1")
	assert.Equal(t, "ledger", logger.Component())
}

func TestMiddlewareCarriesLoggerAndRequestID(t *testing.T) {
	tests := []struct {
		name      string
		requestID func(*http.Request) string
		want      string
		absent    string
	}{
		{name: "tagged", requestID: func(*http.Request) string { return "req-42" }, want: "request_id=req-42"},
		{name: "empty id", requestID: func(*http.Request) string { return "" }, absent: "request_id"},
		{name: "no extractor", absent: "request_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewText(&buf, slog.LevelInfo, "test")

			var got *Logger
			handler := Middleware(logger, tt.requestID)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = FromContext(r.Context())
				got.Info("inside")
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			require.NotNil(t, got)
			assert.Equal(t, "test", got.Component())
			if tt.want != "" {
				assert.Contains(t, buf.String(), tt.want)
			}
			if tt.absent != "" {
				assert.NotContains(t, buf.String(), tt.absent)
			}
		})
	}

	fallback := FromContext(context.Background())
	assert.Equal(t, "unknown", fallback.Component())
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(NewText(&buf, slog.LevelInfo, "test"))
	ctx := context.Background()

	mutations := []struct {
		component string
		eventType string
		want      string
	}{
		{ComponentTransaction, "transaction.created", "transaction_id=e-1"},
		{ComponentBudget, "budget.updated", "budget_id=e-1"},
		{ComponentPot, "pot.withdrawn", "pot_id=e-1"},
		{ComponentApp, "account.created", "entity_id=e-1"},
	}
	for _, m := range mutations {
		t.Run(m.eventType, func(t *testing.T) {
			buf.Reset()
			sl.LogLedgerMutation(ctx, m.component, m.eventType, "acc-1", "e-1")
			out := buf.String()
			assert.Contains(t, out, `msg="Ledger updated"`)
			assert.Contains(t, out, "account_id=acc-1")
			assert.Contains(t, out, "event_type="+m.eventType)
			assert.Contains(t, out, m.want)
		})
	}

	buf.Reset()
	sl.LogError(ctx, "Request failed", errors.New("disk full"), ComponentHTTP, "create_pot", NewFields())
	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, `error="disk full"`)

	buf.Reset()
	r := httptest.NewRequest(http.MethodGet, "/api/pots", nil)
	sl.LogHTTPEnd(ctx, r, http.StatusConflict, 3, "10.0.0.1")
	assert.Contains(t, buf.String(), "level=WARN")
	buf.Reset()
	sl.LogHTTPEnd(ctx, r, http.StatusInternalServerError, 3, "10.0.0.1")
	assert.Contains(t, buf.String(), "level=ERROR")
}
