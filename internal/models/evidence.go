package models

// KeywordWildcard is the sentinel keyword that accepts any non-empty answer.
// It is compared against the stored keyword before normalization.
const KeywordWildcard = "*ANY*"

// EvidenceItem is a discoverable unit of content tied to a physical scan
// code and a secret keyword. Bonus items sit outside the main track and do
// not count toward completion.
type EvidenceItem struct {
	ID       int64
	Title    string
	ScanCode string // Unique opaque string embedded in the printed QR code
	Keyword  string
	Hint     string
	Filename string // Media asset served once the item is unlocked
	Bonus    bool
}

// EvidencePatch carries partial updates for an item. Nil fields are left
// unchanged.
type EvidencePatch struct {
	Title    *string
	ScanCode *string
	Keyword  *string
	Hint     *string
	Filename *string
	Bonus    *bool
}

// IsEmpty reports whether the patch would change nothing.
func (p EvidencePatch) IsEmpty() bool {
	return p.Title == nil && p.ScanCode == nil && p.Keyword == nil &&
		p.Hint == nil && p.Filename == nil && p.Bonus == nil
}
