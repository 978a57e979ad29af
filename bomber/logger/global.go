package logger

import (
	"log/slog"
	"time"
)

// LogOperation logs a finished player or admin operation. Rejections are
// expected traffic and log at Warn.
func LogOperation(op, owner string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "op"),
		slog.String("op", op),
		slog.String("owner", owner),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Warn("Operation rejected", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	slog.Info("Operation committed", attrs...)
}

// LogStatement logs a raw SQL statement run outside bun.
func LogStatement(kind, query string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "db"),
		slog.String("operation", kind),
		slog.String("query", query),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Query failed", append(attrs, slog.Any("error", err))...)
		return
	}
	slog.Debug("Query executed", attrs...)
}

// LedgerDelivery describes one attempt to hand a request to the ledger.
type LedgerDelivery struct {
	ID      string
	Kind    string
	Owner   string
	Attempt int
	Err     error
	Final   bool
	NextTry time.Time
}

// LogLedgerDelivery logs a failed delivery. Final failures need an operator
// (bomberctl requeue) and log at Error.
func LogLedgerDelivery(d LedgerDelivery) {
	attrs := []any{
		slog.String("type", "ledger"),
		slog.String("owner", d.Owner),
		slog.String("id", d.ID),
		slog.String("kind", d.Kind),
		slog.Int("attempt", d.Attempt),
		slog.Any("error", d.Err),
	}

	if d.Final {
		slog.Error("Ledger request failed permanently", attrs...)
		return
	}
	slog.Warn("Ledger request will be retried", append(attrs, slog.Time("next_attempt", d.NextTry))...)
}
