package timeline

// ResolveClosestMonth returns the available bucket nearest to target.
// It returns false only when available is empty.
//
// Distance is counted in calendar months. On a tie the earlier bucket wins
// when target lies strictly after it; otherwise the later bucket kept by the
// ascending scan stays selected.
func ResolveClosestMonth(target Month, available []Month) (Month, bool) {
	if len(available) == 0 {
		return Month{}, false
	}
	if Contains(available, target) {
		return target, true
	}

	best := available[0]
	bestDist := target.Distance(best)
	for _, candidate := range available[1:] {
		dist := target.Distance(candidate)
		switch {
		case dist < bestDist:
			best, bestDist = candidate, dist
		case dist == bestDist:
			earlier, later := best, candidate
			if later.Before(earlier) {
				earlier, later = later, earlier
			}
			if target.After(earlier) {
				best = earlier
			} else {
				best = later
			}
		}
	}
	return best, true
}
