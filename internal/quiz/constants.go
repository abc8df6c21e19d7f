package quiz

// Scoring weights and defaults
const (
	// ContainsWeight is awarded when the whole target appears in a slot.
	ContainsWeight = 100
	// SharedRuneWeight is awarded per distinct target rune found in a slot.
	SharedRuneWeight = 20

	DefaultAcceptScore = 15
	DefaultSlots       = 4
)

// CJK unified ideographs accepted as option text
const (
	hanFirst = '\u4e00'
	hanLast  = '\u9fff'
)
