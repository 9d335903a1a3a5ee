// Package mcptool registers the record store's tools on an MCP server from
// the official Go SDK. The SDK owns protocol framing and lifecycle; this
// package only translates tool arguments into service calls and renders the
// results as text.
package mcptool

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"expenses/internal/core"
	"expenses/internal/services"
)

type addExpenseArgs struct {
	Amount      float64 `json:"amount" jsonschema:"cost of the expense, must be positive"`
	Category    string  `json:"category" jsonschema:"main category, e.g. Food or Transport"`
	Subcategory string  `json:"subcategory,omitempty" jsonschema:"optional specific category, e.g. Grocery"`
	Note        string  `json:"note,omitempty" jsonschema:"optional description"`
	Date        string  `json:"date,omitempty" jsonschema:"optional date in YYYY-MM-DD format, defaults to today"`
}

type listExpensesArgs struct {
	Category  string `json:"category,omitempty" jsonschema:"filter by category"`
	StartDate string `json:"start_date,omitempty" jsonschema:"filter from this date (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"filter until this date (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of records to return, 0 for all"`
}

type getSummaryArgs struct {
	StartDate string `json:"start_date,omitempty" jsonschema:"start date for summary (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"end date for summary (YYYY-MM-DD)"`
}

type listCategoriesArgs struct{}

// RegisterTools attaches all expense tools to the server.
func RegisterTools(server *mcp.Server, service *services.RecordService) {
	t := &toolset{service: service}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_expense",
		Description: "Add a new expense record",
	}, t.addExpense)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_expenses",
		Description: "List expenses with optional category and date filters",
	}, t.listExpenses)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_summary",
		Description: "Spending summary grouped by category and subcategory",
	}, t.getSummary)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_categories",
		Description: "List all available expense categories and their subcategories",
	}, t.listCategories)
}

type toolset struct {
	service *services.RecordService
}

func (t *toolset) addExpense(ctx context.Context, req *mcp.CallToolRequest, args addExpenseArgs) (*mcp.CallToolResult, any, error) {
	cents, err := core.CentsFromFloat(args.Amount)
	if err != nil {
		return errorResult(err), nil, nil
	}

	expense, err := t.service.Add(ctx, services.AddParams{
		AmountCents: cents,
		Category:    args.Category,
		Subcategory: args.Subcategory,
		Note:        args.Note,
		Date:        args.Date,
	})
	if err != nil {
		if !core.IsValidation(err) {
			slog.ErrorContext(ctx, "Failed to add expense", "error", err, "category", args.Category)
		}
		return errorResult(err), nil, nil
	}

	slog.InfoContext(ctx, "Expense added",
		"id", expense.ID,
		"amount_cents", expense.Amount.Cents,
		"category", expense.Category)

	sub := expense.Subcategory
	if sub == "" {
		sub = "N/A"
	}
	return textResult(fmt.Sprintf("Successfully added expense ID %d: %s (%s) - $%s on %s",
		expense.ID, expense.Category, sub, expense.Amount, expense.Date)), nil, nil
}

func (t *toolset) listExpenses(ctx context.Context, req *mcp.CallToolRequest, args listExpensesArgs) (*mcp.CallToolResult, any, error) {
	filter, err := buildFilter(args.Category, args.StartDate, args.EndDate, args.Limit)
	if err != nil {
		return errorResult(err), nil, nil
	}

	expenses, err := t.service.List(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list expenses", "error", err)
		return errorResult(err), nil, nil
	}

	return textResult(formatExpenseTable(expenses)), nil, nil
}

func (t *toolset) getSummary(ctx context.Context, req *mcp.CallToolRequest, args getSummaryArgs) (*mcp.CallToolResult, any, error) {
	filter, err := buildFilter("", args.StartDate, args.EndDate, 0)
	if err != nil {
		return errorResult(err), nil, nil
	}

	totals, err := t.service.Summarize(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to summarize expenses", "error", err)
		return errorResult(err), nil, nil
	}

	return textResult(formatSummaryReport(args.StartDate, args.EndDate, totals)), nil, nil
}

func (t *toolset) listCategories(ctx context.Context, req *mcp.CallToolRequest, args listCategoriesArgs) (*mcp.CallToolResult, any, error) {
	return textResult(formatCategoryHierarchy(t.service.Categories())), nil, nil
}

func buildFilter(category, start, end string, limit int) (core.Filter, error) {
	f := core.Filter{Category: category}

	if start != "" {
		d, err := core.ParseDate(start)
		if err != nil {
			return core.Filter{}, &core.ValidationError{Field: "start_date", Reason: "must be a date in YYYY-MM-DD format"}
		}
		f.From = d
	}
	if end != "" {
		d, err := core.ParseDate(end)
		if err != nil {
			return core.Filter{}, &core.ValidationError{Field: "end_date", Reason: "must be a date in YYYY-MM-DD format"}
		}
		f.To = d
	}
	if limit < 0 {
		return core.Filter{}, &core.ValidationError{Field: "limit", Reason: "must be a non-negative integer"}
	}
	f.Limit = limit
	return f, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
		IsError: true,
	}
}
