package mcptool

import (
	"fmt"
	"strings"

	"expenses/internal/catalog"
	"expenses/internal/core"
)

// formatExpenseTable renders records as an aligned text table.
func formatExpenseTable(expenses []core.Expense) string {
	if len(expenses) == 0 {
		return "No expenses found matching the criteria."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-4s | %-10s | %-12s | %-12s | %-8s | %s\n",
		"ID", "Date", "Category", "Subcategory", "Amount", "Note")
	b.WriteString(strings.Repeat("-", 80))

	for _, e := range expenses {
		sub := e.Subcategory
		if sub == "" {
			sub = "N/A"
		}
		fmt.Fprintf(&b, "\n%-4d | %-10s | %-12s | %-12s | $%-7s | %s",
			e.ID, e.Date, e.Category, sub, e.Amount, e.Note)
	}
	return b.String()
}

// formatSummaryReport renders per-category totals with their subcategory
// breakdown and the grand total for the period.
func formatSummaryReport(start, end string, totals []core.CategoryTotal) string {
	if len(totals) == 0 {
		return "No data recorded for the selected period."
	}
	if start == "" {
		start = "Beginning"
	}
	if end == "" {
		end = "Now"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Expense Summary Report (%s to %s)\n", start, end)
	fmt.Fprintf(&b, "TOTAL SPEND: $%s\n", core.GrandTotal(totals))
	b.WriteString(strings.Repeat("-", 40))

	for _, cat := range totals {
		fmt.Fprintf(&b, "\n\n[%s] - Total: $%s (%d entries)",
			strings.ToUpper(cat.Category), cat.Total, cat.Count)
		for _, sub := range cat.Subcategories {
			fmt.Fprintf(&b, "\n  └─ %s: $%s", sub.Name, sub.Total)
		}
	}
	return b.String()
}

// formatCategoryHierarchy renders the full catalog, categories sorted, each
// with its sorted subcategories.
func formatCategoryHierarchy(cat *catalog.Catalog) string {
	names := cat.Categories()
	if len(names) == 0 {
		return "No categories configured."
	}

	var b strings.Builder
	b.WriteString("Full Expense Categories Hierarchy:\n")
	b.WriteString(strings.Repeat("-", 35))

	for _, name := range names {
		fmt.Fprintf(&b, "\n\n%s", strings.ToUpper(name))
		subs := cat.Subcategories(name)
		if len(subs) == 0 {
			b.WriteString("\n  (No subcategories)")
			continue
		}
		for _, sub := range subs {
			fmt.Fprintf(&b, "\n  └─ %s", sub)
		}
	}
	return b.String()
}
