package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(NewHandlerWithWriter(&buf, slog.LevelDebug, false)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogLedgerDelivery(t *testing.T) {
	tests := []struct {
		name     string
		delivery LedgerDelivery
		want     []string
	}{
		{
			name:     "Retry",
			delivery: LedgerDelivery{ID: "42", Kind: "mint", Owner: "alice", Attempt: 2, Err: errors.New("503"), NextTry: time.Unix(0, 0)},
			want:     []string{"[WARN]", "[LEDGER]", "will be retried", "next_attempt="},
		},
		{
			name:     "Final",
			delivery: LedgerDelivery{ID: "42", Kind: "mint", Owner: "alice", Attempt: 10, Err: errors.New("400"), Final: true},
			want:     []string{"[ERROR]", "[LEDGER]", "failed permanently", "kind=mint"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureDefault(t)
			LogLedgerDelivery(tt.delivery)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
		})
	}
}

func TestLogOperation(t *testing.T) {
	buf := captureDefault(t)

	LogOperation("claim", "alice", time.Millisecond, nil)
	LogOperation("claim", "bob", time.Millisecond, errors.New("no rewards"))

	out := buf.String()
	if !strings.Contains(out, "[INFO]") || !strings.Contains(out, "Operation committed") {
		t.Errorf("missing committed line in %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "error=no rewards") {
		t.Errorf("missing rejected line in %q", out)
	}
}
