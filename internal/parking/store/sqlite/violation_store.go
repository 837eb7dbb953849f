package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	dbpkg "github.com/jmuhire/parkgate/internal/db"
	"github.com/jmuhire/parkgate/internal/parking/types"
)

// ViolationStore persists unauthorized attempts as an append-only audit log.
type ViolationStore struct {
	conn   *sql.DB
	writer *dbpkg.Worker
}

func NewViolationStore(conn *sql.DB, writer *dbpkg.Worker) *ViolationStore {
	return &ViolationStore{conn: conn, writer: writer}
}

func (s *ViolationStore) Append(ctx context.Context, rec types.Violation) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}
	occurredMs := rec.OccurredAt.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO violations(id, occurred_at_ms, plate, attempt_type, reason, details)
VALUES (?, ?, ?, ?, ?, ?);`,
			rec.ID, occurredMs, rec.Plate, string(rec.Type), rec.Reason, rec.Details,
		); err != nil {
			return fmt.Errorf("Append violation insert: %w", err)
		}
		return nil
	})
}

func (s *ViolationStore) List(ctx context.Context) ([]types.Violation, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT id, occurred_at_ms, plate, attempt_type, reason, details
FROM violations
ORDER BY occurred_at_ms DESC, id DESC;`)
	if err != nil {
		return nil, fmt.Errorf("List violations query: %w", err)
	}
	defer rows.Close()

	var out []types.Violation
	for rows.Next() {
		var (
			rec        types.Violation
			occurredMs int64
			attempt    string
		)
		if err := rows.Scan(&rec.ID, &occurredMs, &rec.Plate, &attempt, &rec.Reason, &rec.Details); err != nil {
			return nil, fmt.Errorf("List violations scan: %w", err)
		}
		rec.OccurredAt = time.UnixMilli(occurredMs).UTC()
		rec.Type = types.AttemptType(attempt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
