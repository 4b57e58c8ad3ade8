package slice

// FixedSizeSlice is a set of indices in [0, length) backed by a bool slice
type FixedSizeSlice struct {
	slice        []bool
	numSetValues int
}

func MakeFixedSizeSlice(length int) FixedSizeSlice {
	return FixedSizeSlice{slice: make([]bool, length), numSetValues: 0}
}
func (s *FixedSizeSlice) Len() int { return s.numSetValues }

// Add the indices. Returns the number of indices which were not set before.
func (s *FixedSizeSlice) Add(indices ...int) int {
	added := 0
	for _, index := range indices {
		if !s.slice[index] {
			s.slice[index] = true
			s.numSetValues++
			added++
		}
	}
	return added
}

func (s *FixedSizeSlice) Has(index int) bool { return s.slice[index] }
func (s *FixedSizeSlice) Reset() {
	clear(s.slice)
	s.numSetValues = 0
}

func ReverseInPlace[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Returns true if a value occurs more than once
func HasDuplicates[T comparable](s []T) bool {
	seen := make(map[T]struct{}, len(s))
	for _, a := range s {
		if _, ok := seen[a]; ok {
			return true
		}
		seen[a] = struct{}{}
	}
	return false
}
