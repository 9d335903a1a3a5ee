package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/cache"
	"expenses/internal/catalog"
	"expenses/internal/core"
	"expenses/internal/storage"
)

type capturingPublisher struct {
	messages []*amqp.ExpenseRecordedMessage
}

func (p *capturingPublisher) PublishExpenseRecorded(_ context.Context, msg *amqp.ExpenseRecordedMessage) error {
	p.messages = append(p.messages, msg)
	return nil
}

func newTestService(t *testing.T) (*RecordService, *capturingPublisher) {
	t.Helper()

	cat, err := catalog.Load(strings.NewReader(
		`{"Food": ["Lunch", "Dinner", "Grocery"], "Transport": ["Taxi"], "Other": []}`))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	store, err := storage.Open(filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	pub := &capturingPublisher{}
	svc := NewRecordService(cat, store, pub, cache.NewLRUCache[[]core.CategoryTotal](16, time.Minute))
	return svc, pub
}

func TestAddAssignsIncreasingIDs(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, AddParams{AmountCents: 1000, Category: "Food", Subcategory: "Lunch"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("first id = %d, want 1", first.ID)
	}

	second, err := svc.Add(ctx, AddParams{AmountCents: 2500, Category: "Food", Subcategory: "Dinner"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if second.ID != 2 {
		t.Fatalf("second id = %d, want 2", second.ID)
	}

	all, err := svc.List(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 2 {
		t.Fatalf("list mismatch: %+v", all)
	}

	if len(pub.messages) != 2 || pub.messages[0].ID != 1 || pub.messages[1].Category != "Food" {
		t.Fatalf("expected one event per add: %+v", pub.messages)
	}
}

func TestAddValidation(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		p     AddParams
		field string
	}{
		{"zero amount", AddParams{AmountCents: 0, Category: "Food"}, "amount"},
		{"negative amount", AddParams{AmountCents: -500, Category: "Food"}, "amount"},
		{"unknown category", AddParams{AmountCents: 100, Category: "Pets"}, "category"},
		{"foreign subcategory", AddParams{AmountCents: 100, Category: "Food", Subcategory: "Taxi"}, "subcategory"},
		{"bad date", AddParams{AmountCents: 100, Category: "Food", Date: "next tuesday"}, "date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tc.p)
			if err == nil {
				t.Fatalf("expected error")
			}
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if ve.Field != tc.field {
				t.Fatalf("error field = %q, want %q", ve.Field, tc.field)
			}
		})
	}

	// Nothing was persisted and no events were published
	all, err := svc.List(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("rejected adds must not persist: %+v", all)
	}
	if len(pub.messages) != 0 {
		t.Fatalf("rejected adds must not publish events")
	}
}

func TestAddDefaultsDateToToday(t *testing.T) {
	svc, _ := newTestService(t)

	e, err := svc.Add(context.Background(), AddParams{AmountCents: 100, Category: "Other"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if e.Date.String() != core.Today().String() {
		t.Fatalf("date = %s, want today", e.Date)
	}
}

func TestSummarize(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, p := range []AddParams{
		{AmountCents: 1000, Category: "Food", Subcategory: "Lunch", Date: "2025-01-10"},
		{AmountCents: 500, Category: "Food", Subcategory: "Grocery", Date: "2025-01-11"},
		{AmountCents: 300, Category: "Transport", Subcategory: "Taxi", Date: "2025-01-12"},
	} {
		if _, err := svc.Add(ctx, p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	totals, err := svc.Summarize(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("summarize returned %d categories, want 2", len(totals))
	}
	if totals[0].Category != "Food" || totals[0].Total.Cents != 1500 {
		t.Fatalf("Food = %+v, want 1500", totals[0])
	}
	if totals[1].Category != "Transport" || totals[1].Total.Cents != 300 {
		t.Fatalf("Transport = %+v, want 300", totals[1])
	}
}

func TestSummarizeCacheInvalidatedByAdd(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, AddParams{AmountCents: 1000, Category: "Food", Subcategory: "Lunch"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	totals, err := svc.Summarize(ctx, core.Filter{})
	if err != nil || totals[0].Total.Cents != 1000 {
		t.Fatalf("first summarize = %+v, %v", totals, err)
	}

	// A second add must not serve the stale cached summary
	if _, err := svc.Add(ctx, AddParams{AmountCents: 2500, Category: "Food", Subcategory: "Dinner"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	totals, err = svc.Summarize(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if totals[0].Total.Cents != 3500 {
		t.Fatalf("summary after add = %d, want 3500", totals[0].Total.Cents)
	}
}

func TestEndToEndScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, AddParams{AmountCents: 1000, Category: "Food", Subcategory: "Lunch"})
	if err != nil || first.ID != 1 {
		t.Fatalf("first add = %+v, %v", first, err)
	}
	second, err := svc.Add(ctx, AddParams{AmountCents: 2500, Category: "Food", Subcategory: "Dinner"})
	if err != nil || second.ID != 2 {
		t.Fatalf("second add = %+v, %v", second, err)
	}

	totals, err := svc.Summarize(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(totals) != 1 || totals[0].Category != "Food" || totals[0].Total.Cents != 3500 {
		t.Fatalf("summary = %+v, want Food 3500", totals)
	}

	total, err := svc.Total(ctx)
	if err != nil || total.Cents != 3500 {
		t.Fatalf("total = %+v, %v", total, err)
	}
}
