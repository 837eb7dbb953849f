package db

import (
	"context"
	"database/sql"
)

type TxFn func(ctx context.Context, tx *sql.Tx) error

type task struct {
	ctx context.Context
	fn  TxFn
	ch  chan error
}

// Worker funnels every mutating transaction through one goroutine, making
// it the single logical writer for the ledger within this process.
type Worker struct {
	conn  *sql.DB
	tasks chan task
	done  chan struct{}
}

func NewWorker(conn *sql.DB) *Worker {
	w := &Worker{
		conn:  conn,
		tasks: make(chan task, 128),
		done:  make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) Close() {
	close(w.tasks)
	<-w.done
}

// Do runs fn inside a transaction on the writer goroutine and returns its
// result. If the caller's context expires while the task is queued or
// executing, Do returns early; the transaction still runs to completion and
// its result is discarded via the buffered channel.
func (w *Worker) Do(ctx context.Context, fn TxFn) error {
	ch := make(chan error, 1)
	t := task{ctx: ctx, fn: fn, ch: ch}

	select {
	case w.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer close(w.done)

	for t := range w.tasks {
		tx, err := w.conn.BeginTx(t.ctx, nil)
		if err != nil {
			t.ch <- err
			continue
		}

		if err := t.fn(t.ctx, tx); err != nil {
			_ = tx.Rollback()
			t.ch <- err
			continue
		}

		t.ch <- tx.Commit()
	}
}
