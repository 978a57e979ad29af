package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestCustomHandler(t *testing.T) {
	tests := []struct {
		name    string
		log     func(l *slog.Logger)
		want    []string
		notWant []string
	}{
		{
			name: "OperationLine",
			log: func(l *slog.Logger) {
				l.Info("Operation committed", slog.String("type", "op"), slog.String("op", "claim"), slog.String("owner", "alice"), slog.Int("net", 303))
			},
			want:    []string{"[Bomber]", "[INFO]", "[OP]", "Operation committed [claim by alice]", "net=303"},
			notWant: []string{"owner=", "type="},
		},
		{
			name: "LedgerType",
			log: func(l *slog.Logger) {
				l.Warn("Ledger request failed", slog.String("type", "ledger"))
			},
			want: []string{"[WARN]", "[LEDGER]"},
		},
		{
			name: "DefaultSystem",
			log: func(l *slog.Logger) {
				l.With(slog.String("component", "monitor")).Info("started")
			},
			want: []string{"[SYS]", "started component=monitor"},
		},
		{
			name: "BelowLevel",
			log: func(l *slog.Logger) {
				l.Debug("hidden")
			},
			notWant: []string{"hidden"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := slog.New(NewHandlerWithWriter(&buf, slog.LevelInfo, false))
			tt.log(l)

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("output %q should not contain %q", out, nw)
				}
			}
		})
	}
}
