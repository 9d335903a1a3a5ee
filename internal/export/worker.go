// Package export mirrors recorded expenses into an append-only JSON Lines
// ledger. A worker consumes expense-recorded events and appends one line per
// record, so the ledger can be rebuilt from the queue after a crash.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"expenses/internal/amqp"
)

// Worker appends recorded expenses to the ledger file.
type Worker struct {
	mu   sync.Mutex
	path string
	file *os.File
}

func NewWorker(path string) (*Worker, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open export ledger: %w", err)
	}

	return &Worker{path: path, file: f}, nil
}

// HandleRecorded appends one event as a JSON line and syncs it to disk.
// Returning an error leaves the message on the queue for redelivery.
func (w *Worker) HandleRecorded(msg *amqp.ExpenseRecordedMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal export line: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Write(append(body, '\n')); err != nil {
		return fmt.Errorf("append export line: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync export ledger: %w", err)
	}

	slog.Info("Exported expense", "id", msg.ID, "category", msg.Category, "path", w.path)
	return nil
}

// Run consumes expense-recorded events until ctx is done.
func (w *Worker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeExpenseRecorded(ctx, w.HandleRecorded)
}

func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
