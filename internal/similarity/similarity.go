// Package similarity implements set-overlap coefficients. Inputs are
// treated as sets: repeated elements count once.
package similarity

// Set is a finite set of comparable elements.
type Set[T comparable] map[T]struct{}

// NewSet collapses items into a set.
func NewSet[T comparable](items []T) Set[T] {
	s := make(Set[T], len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Intersection returns |a ∩ b|.
func Intersection[T comparable](a, b Set[T]) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// JaccardSets returns |a ∩ b| / |a ∪ b|, or 0 when both are empty.
func JaccardSets[T comparable](a, b Set[T]) float64 {
	inter := Intersection(a, b)
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// DiceSets returns 2|a ∩ b| / (|a| + |b|), or 0 when both are empty.
func DiceSets[T comparable](a, b Set[T]) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	return 2 * float64(Intersection(a, b)) / float64(total)
}

// Jaccard is JaccardSets over slices.
func Jaccard[T comparable](a, b []T) float64 {
	return JaccardSets(NewSet(a), NewSet(b))
}

// Dice is DiceSets over slices.
func Dice[T comparable](a, b []T) float64 {
	return DiceSets(NewSet(a), NewSet(b))
}
