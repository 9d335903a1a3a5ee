package mcptool

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"expenses/internal/cache"
	"expenses/internal/catalog"
	"expenses/internal/core"
	"expenses/internal/services"
	"expenses/internal/storage"
)

func newTestToolset(t *testing.T) *toolset {
	t.Helper()

	cat, err := catalog.Load(strings.NewReader(`{"Food": ["Lunch", "Dinner"], "Transport": ["Taxi"], "Other": []}`))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	store, err := storage.Open(filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := services.NewRecordService(cat, store, nil, cache.NewLRUCache[[]core.CategoryTotal](16, time.Minute))
	return &toolset{service: svc}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content = %+v", res.Content)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T", res.Content[0])
	}
	return tc.Text
}

func TestAddExpenseTool(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	res, _, err := ts.addExpense(ctx, nil, addExpenseArgs{
		Amount:      12.34,
		Category:    "Food",
		Subcategory: "Lunch",
		Date:        "2025-01-10",
	})
	if err != nil {
		t.Fatalf("addExpense: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	got := resultText(t, res)
	want := "Successfully added expense ID 1: Food (Lunch) - $12.34 on 2025-01-10"
	if got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestAddExpenseToolValidation(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	cases := []struct {
		name string
		args addExpenseArgs
	}{
		{"non-positive amount", addExpenseArgs{Amount: 0, Category: "Food"}},
		{"unknown category", addExpenseArgs{Amount: 5, Category: "Pets"}},
		{"foreign subcategory", addExpenseArgs{Amount: 5, Category: "Food", Subcategory: "Taxi"}},
		{"bad date", addExpenseArgs{Amount: 5, Category: "Food", Date: "10/01/2025"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, _, err := ts.addExpense(ctx, nil, tc.args)
			if err != nil {
				t.Fatalf("addExpense: %v", err)
			}
			if !res.IsError {
				t.Fatalf("expected tool error, got %q", resultText(t, res))
			}
			if !strings.HasPrefix(resultText(t, res), "Error: ") {
				t.Fatalf("text = %q", resultText(t, res))
			}
		})
	}

	res, _, _ := ts.listExpenses(ctx, nil, listExpensesArgs{})
	if got := resultText(t, res); got != "No expenses found matching the criteria." {
		t.Fatalf("rejected adds must not persist: %q", got)
	}
}

func TestListExpensesTool(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	seed := []addExpenseArgs{
		{Amount: 10, Category: "Food", Subcategory: "Lunch", Date: "2025-01-10", Note: "pasta"},
		{Amount: 3, Category: "Transport", Subcategory: "Taxi", Date: "2025-01-15"},
		{Amount: 5, Category: "Food", Subcategory: "Dinner", Date: "2025-02-01"},
	}
	for _, args := range seed {
		if res, _, _ := ts.addExpense(ctx, nil, args); res.IsError {
			t.Fatalf("seed failed: %s", resultText(t, res))
		}
	}

	res, _, err := ts.listExpenses(ctx, nil, listExpensesArgs{Category: "Food"})
	if err != nil {
		t.Fatalf("listExpenses: %v", err)
	}
	got := resultText(t, res)
	if !strings.Contains(got, "Lunch") || !strings.Contains(got, "Dinner") {
		t.Fatalf("filtered table missing rows:\n%s", got)
	}
	if strings.Contains(got, "Taxi") {
		t.Fatalf("category filter leaked:\n%s", got)
	}

	res, _, _ = ts.listExpenses(ctx, nil, listExpensesArgs{StartDate: "2025-01-12", EndDate: "2025-01-31"})
	got = resultText(t, res)
	if !strings.Contains(got, "Taxi") || strings.Contains(got, "Lunch") {
		t.Fatalf("date filter wrong:\n%s", got)
	}

	res, _, _ = ts.listExpenses(ctx, nil, listExpensesArgs{StartDate: "bogus"})
	if !res.IsError {
		t.Fatalf("bad start_date should be a tool error")
	}
}

func TestGetSummaryTool(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	seed := []addExpenseArgs{
		{Amount: 10, Category: "Food", Subcategory: "Lunch"},
		{Amount: 5, Category: "Food", Subcategory: "Dinner"},
		{Amount: 3, Category: "Transport", Subcategory: "Taxi"},
	}
	for _, args := range seed {
		if res, _, _ := ts.addExpense(ctx, nil, args); res.IsError {
			t.Fatalf("seed failed: %s", resultText(t, res))
		}
	}

	res, _, err := ts.getSummary(ctx, nil, getSummaryArgs{})
	if err != nil {
		t.Fatalf("getSummary: %v", err)
	}
	got := resultText(t, res)
	for _, want := range []string{
		"TOTAL SPEND: $18.00",
		"[FOOD] - Total: $15.00 (2 entries)",
		"└─ Lunch: $10.00",
		"└─ Dinner: $5.00",
		"[TRANSPORT] - Total: $3.00 (1 entries)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestGetSummaryToolEmpty(t *testing.T) {
	ts := newTestToolset(t)

	res, _, _ := ts.getSummary(context.Background(), nil, getSummaryArgs{})
	if got := resultText(t, res); got != "No data recorded for the selected period." {
		t.Fatalf("empty summary = %q", got)
	}
}

func TestListCategoriesTool(t *testing.T) {
	ts := newTestToolset(t)

	res, _, _ := ts.listCategories(context.Background(), nil, listCategoriesArgs{})
	got := resultText(t, res)
	for _, want := range []string{"FOOD", "└─ Lunch", "TRANSPORT", "OTHER", "(No subcategories)"} {
		if !strings.Contains(got, want) {
			t.Fatalf("hierarchy missing %q:\n%s", want, got)
		}
	}
	if !strings.HasPrefix(got, "Full Expense Categories Hierarchy:") {
		t.Fatalf("hierarchy header wrong:\n%s", got)
	}
}

func TestFormatExpenseTableAlignment(t *testing.T) {
	out := formatExpenseTable([]core.Expense{
		{ID: 1, Amount: core.Money{Cents: 1234}, Date: mustDate(t, "2025-01-10"), Category: "Food", Subcategory: "Lunch", Note: "pasta"},
		{ID: 2, Amount: core.Money{Cents: 300}, Date: mustDate(t, "2025-01-15"), Category: "Transport"},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID   | Date       | Category") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[3], "N/A") {
		t.Fatalf("missing subcategory placeholder: %q", lines[3])
	}
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}
