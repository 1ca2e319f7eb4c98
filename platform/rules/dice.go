package rules

// Source is the randomness provider for dice and deck shuffles. *rand.Rand satisfies it.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// RollDice rolls two independent six-sided dice.
func RollDice(src Source) (int, int) {
	return src.Intn(6) + 1, src.Intn(6) + 1
}

func IsDoubles(d1, d2 int) bool {
	return d1 == d2
}

// shuffle returns a Fisher-Yates permutation of 0..n-1.
func shuffle(n int, src Source) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}
