package aggregate

// minTieRanks assigns competitive ranks to values, ascending (lowest
// value gets rank 1). Tied values share the minimum rank eligible for
// the tie and the skipped ranks are not compacted: values {300, 300,
// 450} rank {1, 1, 3}.
func minTieRanks(values []int) []int {
	ranks := make([]int, len(values))
	for i, v := range values {
		rank := 1
		for _, other := range values {
			if other < v {
				rank++
			}
		}
		ranks[i] = rank
	}
	return ranks
}
