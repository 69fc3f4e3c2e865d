package query

// Distance computes the Damerau–Levenshtein distance (optimal string
// alignment variant: a transposition of two adjacent characters counts as a
// single edit) between a and b, operating on runes.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Three rolling rows: transpositions look two rows back.
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := prev2[j-2] + 1; t < curr[j] {
					curr[j] = t // transposition
				}
			}
		}
		prev2, prev, curr = prev, curr, prev2
	}
	return prev[len(rb)]
}

// withinDistance reports whether Distance(a, b) <= max, skipping the full
// computation when the length difference alone already exceeds max.
func withinDistance(a, b string, max int) (int, bool) {
	la := len([]rune(a))
	lb := len([]rune(b))
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > max {
		return 0, false
	}
	d := Distance(a, b)
	return d, d <= max
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
