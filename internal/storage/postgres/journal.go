package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roadwar/internal/game/event"
)

// ErrSessionNotFound is returned when a session has no journaled events.
var ErrSessionNotFound = errors.New("journal session not found")

// Record is one persisted event.
type Record struct {
	SessionID  uuid.UUID
	Seq        int64
	Type       event.Type
	Payload    map[string]any
	RecordedAt time.Time
}

// Journal appends the combat event feed of one session to the combat_events
// table. It is an audit consumer: nothing is ever read back into the core.
// Journal is safe for concurrent use.
type Journal struct {
	db      *pgxpool.Pool
	session uuid.UUID
	timeout time.Duration
	logger  *zap.Logger

	mu  sync.Mutex
	seq int64
}

// NewJournal creates a Journal for a fresh session.
//
// Precondition: db and logger must be non-nil; timeout > 0.
// Postcondition: Session() returns a new random UUID.
func NewJournal(db *pgxpool.Pool, timeout time.Duration, logger *zap.Logger) *Journal {
	if db == nil || logger == nil || timeout <= 0 {
		panic("postgres: NewJournal precondition violated: db and logger must be non-nil and timeout positive")
	}
	return &Journal{db: db, session: uuid.New(), timeout: timeout, logger: logger}
}

// Session returns the session ID rows are written under.
func (j *Journal) Session() uuid.UUID { return j.session }

// Append persists e with the next sequence number.
//
// Postcondition: Returns the assigned sequence number, or a non-nil error in
// which case the sequence number is not consumed.
func (j *Journal) Append(ctx context.Context, e event.Event) (int64, error) {
	payload, err := event.Fields(e)
	if err != nil {
		return 0, fmt.Errorf("encoding %s event: %w", e.Type(), err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	seq := j.seq + 1
	_, err = j.db.Exec(ctx, `
		INSERT INTO combat_events (session_id, seq, event_type, payload)
		VALUES ($1, $2, $3, $4)`,
		j.session, seq, string(e.Type()), payload,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting %s event: %w", e.Type(), err)
	}
	j.seq = seq
	return seq, nil
}

// Handle is an event.Handler. Bus handlers cannot fail, so insert errors are
// logged and the event is dropped from the journal.
func (j *Journal) Handle(e event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if _, err := j.Append(ctx, e); err != nil {
		j.logger.Warn("journal append failed",
			zap.String("session", j.session.String()),
			zap.String("type", string(e.Type())),
			zap.Error(err),
		)
	}
}

// Load returns every record of session in sequence order.
//
// Postcondition: Returns ErrSessionNotFound when the session has no rows.
func Load(ctx context.Context, db *pgxpool.Pool, session uuid.UUID) ([]Record, error) {
	rows, err := db.Query(ctx, `
		SELECT session_id, seq, event_type, payload, recorded_at
		FROM combat_events WHERE session_id = $1 ORDER BY seq ASC`,
		session,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		var typ string
		if err := row.Scan(&r.SessionID, &r.Seq, &typ, &r.Payload, &r.RecordedAt); err != nil {
			return Record{}, err
		}
		r.Type = event.Type(typ)
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning journal: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrSessionNotFound
	}
	return records, nil
}

// CountByType summarises a session as event type to row count.
func CountByType(ctx context.Context, db *pgxpool.Pool, session uuid.UUID) (map[event.Type]int, error) {
	rows, err := db.Query(ctx, `
		SELECT event_type, COUNT(*) FROM combat_events
		WHERE session_id = $1 GROUP BY event_type`,
		session,
	)
	if err != nil {
		return nil, fmt.Errorf("counting journal: %w", err)
	}
	defer rows.Close()
	out := make(map[event.Type]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scanning journal count: %w", err)
		}
		out[event.Type(typ)] = n
	}
	return out, rows.Err()
}
