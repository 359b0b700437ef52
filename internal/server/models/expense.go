package models

// Expense is a single receipt recorded against a trip. Amounts are positive
// decimals, implicitly EUR. Once exported an expense is never mutated by the
// export path; exports read a snapshot.
type Expense struct {
	ID     string  `json:"id"`
	TripID string  `json:"-"`
	UserID string  `json:"-"`
	Amount float64 `json:"amount"`
	// Comment is free text and may be empty.
	Comment string `json:"comment"`
	// PhotoURL is a resolvable URL to the receipt photo, or empty if no
	// photo was attached.
	PhotoURL string `json:"photoUrl"`
	// PhotoPath is the object-storage key of the photo, used for deletion.
	// Irrelevant to export.
	PhotoPath string `json:"photoPath,omitempty"`
	// Timestamp is the capture time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}
