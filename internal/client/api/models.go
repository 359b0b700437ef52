// Package api implements the REST client the CLI talks to the backend with.
package api

// TokenPair mirrors the server's auth response.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Expense is one receipt line inside a trip.
type Expense struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Comment   string  `json:"comment"`
	PhotoURL  string  `json:"photoUrl"`
	PhotoPath string  `json:"photoPath,omitempty"`
	Timestamp int64   `json:"ts"`
}

// Trip groups the expenses of one location/date pair.
type Trip struct {
	ID       string    `json:"id"`
	Location string    `json:"location"`
	Date     string    `json:"date"`
	Expenses []Expense `json:"expenses"`
}

// Profile holds the user's presentation settings.
type Profile struct {
	AvatarURL string `json:"avatarUrl"`
	Palette   string `json:"palette"`
}
