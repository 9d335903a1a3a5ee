package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"expenses/internal/core"
	"expenses/internal/services"
)

type expenseJSON struct {
	ID          int64  `json:"id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Note        string `json:"note,omitempty"`
}

type createExpenseRequest struct {
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory"`
	Note        string      `json:"note"`
	Date        string      `json:"date"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Amount:      e.Amount.String(),
		Date:        e.Date.String(),
		Category:    e.Category,
		Subcategory: e.Subcategory,
		Note:        e.Note,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP status codes:
// ValidationError is the caller's problem, StorageError is ours.
func writeError(w http.ResponseWriter, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ve.Error(), Field: ve.Field})
		return
	}
	if core.IsStorage(err) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage unavailable"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	case http.MethodGet:
		s.handleListExpenses(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be a JSON expense"})
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		writeError(w, err)
		return
	}

	expense, err := s.service.Add(r.Context(), services.AddParams{
		AmountCents: cents,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Note:        req.Note,
		Date:        req.Date,
	})
	if err != nil {
		if !core.IsValidation(err) {
			slog.ErrorContext(r.Context(), "Failed to save expense",
				"error", err,
				"category", req.Category,
				"amount", req.Amount.String())
		}
		writeError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense created",
		"id", expense.ID,
		"amount_cents", expense.Amount.Cents,
		"category", expense.Category)

	writeJSON(w, http.StatusCreated, toExpenseJSON(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	expenses, err := s.service.List(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err)
		writeError(w, err)
		return
	}

	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, struct {
		Expenses []expenseJSON `json:"expenses"`
		Count    int           `json:"count"`
	}{Expenses: out, Count: len(out)})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	totals, err := s.service.Summarize(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to summarize expenses", "error", err)
		writeError(w, err)
		return
	}

	type subJSON struct {
		Name  string `json:"name"`
		Total string `json:"total"`
		Count int    `json:"count"`
	}
	type categoryJSON struct {
		Category      string    `json:"category"`
		Total         string    `json:"total"`
		Count         int       `json:"count"`
		Subcategories []subJSON `json:"subcategories,omitempty"`
	}

	out := make([]categoryJSON, 0, len(totals))
	for _, t := range totals {
		cj := categoryJSON{Category: t.Category, Total: t.Total.String(), Count: t.Count}
		for _, sub := range t.Subcategories {
			cj.Subcategories = append(cj.Subcategories, subJSON{Name: sub.Name, Total: sub.Total.String(), Count: sub.Count})
		}
		out = append(out, cj)
	}

	writeJSON(w, http.StatusOK, struct {
		Categories []categoryJSON `json:"categories"`
		GrandTotal string         `json:"grand_total"`
	}{Categories: out, GrandTotal: core.GrandTotal(totals).String()})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cat := s.service.Categories()
	out := make(map[string][]string, len(cat.Categories()))
	for _, name := range cat.Categories() {
		subs := cat.Subcategories(name)
		if subs == nil {
			subs = []string{}
		}
		out[name] = subs
	}
	writeJSON(w, http.StatusOK, out)
}

func filterFromQuery(r *http.Request) (core.Filter, error) {
	q := r.URL.Query()
	f := core.Filter{Category: strings.TrimSpace(q.Get("category"))}

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, &core.ValidationError{Field: "from", Reason: "must be a date in YYYY-MM-DD format"}
		}
		f.From = d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, &core.ValidationError{Field: "to", Reason: "must be a date in YYYY-MM-DD format"}
		}
		f.To = d
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return core.Filter{}, &core.ValidationError{Field: "limit", Reason: "must be a non-negative integer"}
		}
		f.Limit = n
	}
	return f, nil
}
