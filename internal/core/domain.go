package core

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type (
	// Date is a calendar date without a time component, rendered as YYYY-MM-DD.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a single persisted entry. ID is assigned by the store on
	// creation and records are immutable afterwards.
	Expense struct {
		ID          int64
		Amount      Money
		Date        Date
		Category    string
		Subcategory string
		Note        string
	}

	// Filter narrows List and Summarize results. Fields that are set combine
	// with AND semantics. Limit of zero means no limit.
	Filter struct {
		Category string
		From     Date
		To       Date
		Limit    int
	}
)

// ParseDate parses an ISO 8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Reason: "must be a date in YYYY-MM-DD format"}
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return Date{Time: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
}

func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// IsEmpty reports whether the date was left unset (optional filter bounds).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be a positive amount"}
	}
	return nil
}

// Validate checks the invariants the store guarantees for persisted rows.
// Catalog membership of the category pair is checked by the service layer.
func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "must not be empty"}
	}
	if strings.TrimSpace(e.Category) == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	return nil
}
