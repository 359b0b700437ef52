package models

import "time"

// Profile holds per-user presentation settings: the avatar picture and the
// color palette chosen in the profile modal.
type Profile struct {
	UserID    string    `json:"-"`
	AvatarURL string    `json:"avatarUrl"`
	Palette   string    `json:"palette"`
	UpdatedAt time.Time `json:"updatedAt"`
}
