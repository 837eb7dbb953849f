package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/jmuhire/parkgate/internal/db"
	"github.com/jmuhire/parkgate/internal/parking/store"
	"github.com/jmuhire/parkgate/internal/parking/types"
)

// SessionStore persists parking sessions in SQLite. Reads go straight to
// the connection; every mutation goes through the single-writer Worker.
type SessionStore struct {
	conn   *sql.DB
	writer *dbpkg.Worker
}

func NewSessionStore(conn *sql.DB, writer *dbpkg.Worker) *SessionStore {
	return &SessionStore{conn: conn, writer: writer}
}

const sessionColumns = `sequence_id, plate, entry_time_ms, exit_time_ms, amount_due, payment_status, version`

func (s *SessionStore) LatestSession(ctx context.Context, plate string) (*types.Session, error) {
	row := s.conn.QueryRowContext(ctx, `
SELECT `+sessionColumns+`
FROM sessions
WHERE plate = ?
ORDER BY sequence_id DESC
LIMIT 1;`, plate)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestSession query: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) CreateSession(ctx context.Context, plate string, entryTime time.Time) (types.Session, error) {
	nowMs := time.Now().UTC().UnixMilli()
	entryMs := entryTime.UTC().UnixMilli()

	var seq int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO sessions(plate, entry_time_ms, payment_status, version, created_at_ms, updated_at_ms)
VALUES (?, ?, 0, 0, ?, ?);`, plate, entryMs, nowMs, nowMs)
		if err != nil {
			return fmt.Errorf("CreateSession insert: %w", err)
		}
		seq, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("CreateSession last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.Session{}, err
	}

	return types.Session{
		SequenceID: seq,
		Plate:      plate,
		EntryTime:  time.UnixMilli(entryMs).UTC(),
		Status:     types.Unpaid,
	}, nil
}

func (s *SessionStore) UpdateSession(ctx context.Context, sess types.Session, expectVersion int64) (types.Session, error) {
	nowMs := time.Now().UTC().UnixMilli()

	var exitMs any
	if sess.ExitTime != nil {
		exitMs = sess.ExitTime.UTC().UnixMilli()
	}
	var amount any
	if sess.AmountDue != nil {
		amount = *sess.AmountDue
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE sessions
SET exit_time_ms   = ?,
    amount_due     = ?,
    payment_status = ?,
    version        = version + 1,
    updated_at_ms  = ?
WHERE sequence_id = ? AND version = ?;`,
			exitMs, amount, int(sess.Status), nowMs, sess.SequenceID, expectVersion)
		if err != nil {
			return fmt.Errorf("UpdateSession: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("UpdateSession rows affected: %w", err)
		}
		if n == 0 {
			// Either the row moved on under us or the sequence ID is gone;
			// both look the same to the compare-and-swap.
			return store.ErrVersionMismatch
		}
		return nil
	})
	if err != nil {
		return types.Session{}, err
	}

	sess.Version = expectVersion + 1
	return sess, nil
}

func (s *SessionStore) ListSessions(ctx context.Context) ([]types.Session, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT `+sessionColumns+`
FROM sessions
ORDER BY sequence_id ASC;`)
	if err != nil {
		return nil, fmt.Errorf("ListSessions query: %w", err)
	}
	defer rows.Close()

	var out []types.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("ListSessions scan: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (types.Session, error) {
	var (
		sess    types.Session
		entryMs int64
		exitMs  sql.NullInt64
		amount  sql.NullInt64
		status  int
	)
	err := row.Scan(&sess.SequenceID, &sess.Plate, &entryMs, &exitMs, &amount, &status, &sess.Version)
	if err != nil {
		return types.Session{}, err
	}

	sess.EntryTime = time.UnixMilli(entryMs).UTC()
	if exitMs.Valid {
		t := time.UnixMilli(exitMs.Int64).UTC()
		sess.ExitTime = &t
	}
	if amount.Valid {
		v := amount.Int64
		sess.AmountDue = &v
	}
	sess.Status = types.PaymentStatus(status)
	return sess, nil
}
