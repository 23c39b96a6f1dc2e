package experiment

// BlindLabels is the fixed opaque label set. Each run assigns these to the
// four condition results in permuted order.
var BlindLabels = [4]string{"A", "B", "C", "D"}

// blindAssignment fixes one run's permutation and its reverse lookup in a
// single structure, generated exactly once per run so reveal stays
// consistent with the served ordering.
type blindAssignment struct {
	// slotFor[i] is the canonical slot shown at display position i.
	slotFor [4]int
	// byLabel maps a blind label to its source condition.
	byLabel map[string]ConditionID
}

// newBlindAssignment draws a uniform permutation of the four slots. perm
// must return a uniform permutation of [0,n); the default is rand.Perm.
func newBlindAssignment(perm func(n int) []int) blindAssignment {
	p := perm(4)
	a := blindAssignment{byLabel: make(map[string]ConditionID, 4)}
	for i, slot := range p {
		a.slotFor[i] = slot
		a.byLabel[BlindLabels[i]] = ConditionOrder[slot]
	}
	return a
}
