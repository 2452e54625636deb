package models

import (
	"time"
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsAdmin      bool
	SeenIntro    bool // Whether the introduction screen has been shown
	Balance      int  // Reward currency; incremented on first unlock of each item
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
