package domain

// ReconcileOrder aligns a session's ledger with the set of cards that
// actually exist, producing the display order. There is no foreign-key
// enforcement between the ledger and the card records, so readers tolerate
// divergence instead of failing:
//
//   - ledger entries with no live card are dropped (a concurrent delete's
//     record removal may land before its ledger removal is visible);
//   - live cards missing from the ledger are appended at the end, in the
//     order given, so a card whose append lost a race stays visible even
//     though its rank is undefined beyond "last".
func ReconcileOrder(order []string, cards []*Card) []*Card {
	byID := make(map[string]*Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	ordered := make([]*Card, 0, len(cards))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if c, ok := byID[id]; ok && !seen[id] {
			ordered = append(ordered, c)
			seen[id] = true
		}
	}

	for _, c := range cards {
		if !seen[c.ID] {
			ordered = append(ordered, c)
		}
	}

	return ordered
}
