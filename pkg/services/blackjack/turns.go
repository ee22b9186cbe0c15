package blackjack

// nextSeat returns the (player, hand) after (p, h) in turn order: the next
// hand of the same player, else the first hand of the next player holding
// any. handCounts[i] is zero for a player who is sitting out. ok is false
// once the last hand of the last player has been passed.
func nextSeat(handCounts []int, p, h int) (int, int, bool) {
	if p >= 0 && p < len(handCounts) && h+1 < handCounts[p] {
		return p, h + 1, true
	}
	for next := p + 1; next < len(handCounts); next++ {
		if handCounts[next] > 0 {
			return next, 0, true
		}
	}
	return 0, 0, false
}

// firstSeat returns the first (player, hand) in turn order
func firstSeat(handCounts []int) (int, int, bool) {
	return nextSeat(handCounts, -1, 0)
}
