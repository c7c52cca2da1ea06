package models

import "time"

// AuthToken is the opaque bearer credential of a user. There is at most one
// per user and it is reused across logins.
type AuthToken struct {
	Key       string    `gorm:"primaryKey;size:40" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
