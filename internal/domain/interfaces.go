package domain

import (
	"context"
	"time"
)

// Limiter gates request admission for the transport. Wait blocks until a
// request may be dispatched under the burst budget; Record counts a request
// that was actually dispatched. The split mirrors the admission model of the
// transport: admission is checked once per logical call, while every
// dispatched attempt (including retries) is recorded.
type Limiter interface {
	Wait(ctx context.Context) error
	Record(ctx context.Context) error
	Stats(ctx context.Context) (RateLimitStats, error)
}

// AuditJournal appends operator-facing audit events (orders placed, buys
// confirmed). It is write-only on the trading path; nothing in the trading
// path ever reads it back.
type AuditJournal interface {
	Log(ctx context.Context, event string, detail map[string]any) error
}

// AuditEntry is one persisted journal row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}
