package scoring

// Distance returns the Levenshtein edit distance between a and b.
// Comparison is case-sensitive and works on runes, so multi-byte characters
// count as a single edit.
func Distance(a, b string) int {
	s0 := []rune(a)
	s1 := []rune(b)

	cost := make([]int, len(s0)+1)
	newCost := make([]int, len(s0)+1)
	for i := range cost {
		cost[i] = i
	}

	for j := 1; j <= len(s1); j++ {
		newCost[0] = j
		for i := 1; i <= len(s0); i++ {
			match := 1
			if s0[i-1] == s1[j-1] {
				match = 0
			}
			newCost[i] = min(
				cost[i-1]+match, // substitution
				cost[i]+1,       // insertion
				newCost[i-1]+1,  // deletion
			)
		}
		cost, newCost = newCost, cost
	}

	return cost[len(s0)]
}
