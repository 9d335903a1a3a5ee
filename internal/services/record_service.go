// Package services orchestrates the record store: catalog validation in
// front of SQLite persistence, summary caching, and optional event
// publishing. All state is injected so test instances stay isolated.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/cache"
	"expenses/internal/catalog"
	"expenses/internal/core"
	"expenses/internal/storage"
)

// EventPublisher publishes expense-recorded events. A nil publisher disables
// publishing; publish failures never fail the originating call.
type EventPublisher interface {
	PublishExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error
}

// AddParams carries already-deserialized arguments for Add. Date is an ISO
// 8601 string; empty means today.
type AddParams struct {
	AmountCents int64
	Category    string
	Subcategory string
	Note        string
	Date        string
}

// RecordService owns create/list/summarize over persisted expenses.
type RecordService struct {
	catalog   *catalog.Catalog
	storage   *storage.Store
	publisher EventPublisher
	summaries *cache.LRUCache[[]core.CategoryTotal]
}

func NewRecordService(cat *catalog.Catalog, store *storage.Store, publisher EventPublisher, summaries *cache.LRUCache[[]core.CategoryTotal]) *RecordService {
	return &RecordService{
		catalog:   cat,
		storage:   store,
		publisher: publisher,
		summaries: summaries,
	}
}

// Add validates the input against the category catalog, persists the record,
// and returns it with its assigned id. Every rule violation is a
// ValidationError naming the offending field; nothing is persisted on failure.
func (s *RecordService) Add(ctx context.Context, p AddParams) (core.Expense, error) {
	if p.AmountCents <= 0 {
		return core.Expense{}, &core.ValidationError{Field: "amount", Reason: "must be a positive amount"}
	}

	category := strings.TrimSpace(p.Category)
	if !s.catalog.Contains(category) {
		return core.Expense{}, &core.ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not a known category", category)}
	}

	subcategory := strings.TrimSpace(p.Subcategory)
	if subcategory != "" && !s.catalog.ContainsSubcategory(category, subcategory) {
		return core.Expense{}, &core.ValidationError{
			Field:  "subcategory",
			Reason: fmt.Sprintf("%q does not belong to category %q", subcategory, category),
		}
	}

	date := core.Today()
	if strings.TrimSpace(p.Date) != "" {
		var err error
		date, err = core.ParseDate(p.Date)
		if err != nil {
			return core.Expense{}, err
		}
	}

	expense := core.Expense{
		Amount:      core.Money{Cents: p.AmountCents},
		Date:        date,
		Category:    category,
		Subcategory: subcategory,
		Note:        strings.TrimSpace(p.Note),
	}
	if err := expense.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.storage.Insert(ctx, expense)
	if err != nil {
		return core.Expense{}, err
	}

	// Cached aggregates are stale now
	if s.summaries != nil {
		s.summaries.Purge()
	}

	s.publishRecorded(ctx, saved)
	return saved, nil
}

// List returns records matching the filter in insertion order.
func (s *RecordService) List(ctx context.Context, f core.Filter) ([]core.Expense, error) {
	return s.storage.List(ctx, f)
}

// Summarize aggregates amounts by category over the filtered record set,
// consulting the summary cache first.
func (s *RecordService) Summarize(ctx context.Context, f core.Filter) ([]core.CategoryTotal, error) {
	key := filterKey(f)
	if s.summaries != nil {
		if totals, ok := s.summaries.Get(key); ok {
			slog.DebugContext(ctx, "Summary cache hit", "key", key)
			return totals, nil
		}
	}

	totals, err := s.storage.Summarize(ctx, f)
	if err != nil {
		return nil, err
	}

	if s.summaries != nil {
		s.summaries.Set(key, totals)
	}
	return totals, nil
}

// Total returns the lifetime sum of all recorded amounts.
func (s *RecordService) Total(ctx context.Context) (core.Money, error) {
	return s.storage.Total(ctx)
}

// Categories exposes the catalog backing this service.
func (s *RecordService) Categories() *catalog.Catalog {
	return s.catalog
}

func (s *RecordService) publishRecorded(ctx context.Context, e core.Expense) {
	if s.publisher == nil {
		return
	}

	msg := &amqp.ExpenseRecordedMessage{
		ID:          e.ID,
		AmountCents: e.Amount.Cents,
		Date:        e.Date.String(),
		Category:    e.Category,
		Subcategory: e.Subcategory,
		Note:        e.Note,
		Timestamp:   time.Now(),
	}
	if err := s.publisher.PublishExpenseRecorded(ctx, msg); err != nil {
		// The record is durably saved; losing the event is the consumer's
		// problem to reconcile, not a reason to fail the call.
		slog.ErrorContext(ctx, "Failed to publish expense recorded event",
			"id", e.ID, "error", err)
	}
}

// Close closes the underlying storage and publisher connections.
func (s *RecordService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if closer, ok := s.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}
	return nil
}

func filterKey(f core.Filter) string {
	parts := []string{f.Category, "", "", ""}
	if !f.From.IsEmpty() {
		parts[1] = f.From.String()
	}
	if !f.To.IsEmpty() {
		parts[2] = f.To.String()
	}
	if f.Limit > 0 {
		parts[3] = strconv.Itoa(f.Limit)
	}
	return strings.Join(parts, "|")
}
