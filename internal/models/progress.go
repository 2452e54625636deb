package models

import "time"

// FoundRecord marks that a user has scanned an item's code. At most one per
// (user, item) pair; inserts are idempotent.
type FoundRecord struct {
	UserID  string
	ItemID  int64
	FoundAt time.Time
}

// UnlockRecord marks that a user supplied the correct keyword. Creating it
// is the only trigger that increments the user's balance, and only on first
// creation.
type UnlockRecord struct {
	UserID     string
	ItemID     int64
	UnlockedAt time.Time
}

// ItemState is the per-user view of a single evidence item.
type ItemState struct {
	Item     EvidenceItem
	Found    bool
	Unlocked bool
}

// UnlockOutcome distinguishes the three non-error results of an unlock
// attempt. Both Unlocked and AlreadyUnlocked are successes.
type UnlockOutcome int

const (
	UnlockIncorrect UnlockOutcome = iota
	Unlocked
	AlreadyUnlocked
)

// StatusSummary is the full per-user progress view.
type StatusSummary struct {
	Main          []ItemState
	Bonus         []ItemState
	FoundCount    int // Main-track items found, unlocked or not
	UnlockedCount int
	TotalCount    int
	AllSolved     bool
	ActiveHint    string // Hint for one deterministically chosen unfound item
	Balance       int
	SeenIntro     bool
}
