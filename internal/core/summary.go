package core

// SubcategoryTotal is an amount aggregated under one subcategory.
type SubcategoryTotal struct {
	Name  string
	Total Money
	Count int
}

// CategoryTotal is an amount aggregated by category, with the per-subcategory
// breakdown. Categories with no matching records are never reported.
type CategoryTotal struct {
	Category      string
	Total         Money
	Count         int
	Subcategories []SubcategoryTotal
}

// GrandTotal sums a set of category totals.
func GrandTotal(totals []CategoryTotal) Money {
	var cents int64
	for _, t := range totals {
		cents += t.Total.Cents
	}
	return Money{Cents: cents}
}
