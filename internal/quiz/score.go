package quiz

import "strings"

// Score rates how well slot text matches target.
func Score(target, slot string) int {
	if target == "" || slot == "" {
		return 0
	}
	score := 0
	if strings.Contains(slot, target) {
		score += ContainsWeight
	}
	have := make(map[rune]struct{}, len(slot))
	for _, r := range slot {
		have[r] = struct{}{}
	}
	seen := make(map[rune]struct{}, len(target))
	for _, r := range target {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		if _, ok := have[r]; ok {
			score += SharedRuneWeight
		}
	}
	return score
}

// Best picks the lowest-index slot with the strictly highest score. ok is
// false when the target is empty or the best score is below accept.
func Best(slots Slots, target string, accept int) (idx, score int, ok bool) {
	if target == "" {
		return -1, 0, false
	}
	idx = -1
	for i, text := range slots {
		if text == "" {
			continue
		}
		if s := Score(target, text); s > score {
			idx, score = i, s
		}
	}
	if idx < 0 || score < accept {
		return -1, score, false
	}
	return idx, score, true
}
