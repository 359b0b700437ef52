package models

// Trip is one business trip: a location plus a calendar date, owned by
// exactly one user. A user cannot have two trips with the same location and
// date; saves upsert on that pair.
type Trip struct {
	ID       string `json:"id"`
	UserID   string `json:"-"`
	Location string `json:"location"`
	// Date is the trip's calendar date in "yyyy-mm-dd" form. There is no
	// time component.
	Date string `json:"date"`
	// Expenses are ordered by insertion (capture timestamp).
	Expenses []Expense `json:"expenses"`
}
