// Package util holds small generic slice helpers shared by the coin entries.
package util

// Map applies a transformation function to each element of a slice and returns a new slice
// with the transformed values.
//
// Type Parameters:
//   - A: The type of elements in the input slice
//   - B: The type of elements in the output slice
//
// Parameters:
//   - coll: The input slice to transform
//   - mapper: Function that transforms each element and receives the element's index
//
// Returns:
//   - []B: A new slice containing the transformed elements
func Map[A any, B any](coll []A, mapper func(i A, index uint64) B) []B {
	out := make([]B, len(coll))
	for i, item := range coll {
		out[i] = mapper(item, uint64(i))
	}
	return out
}

// Any reports whether at least one element satisfies criteria.
func Any[A any](coll []A, criteria func(i A) bool) bool {
	for _, item := range coll {
		if criteria(item) {
			return true
		}
	}
	return false
}

// Repeat returns a slice holding n copies of v.
func Repeat[A any](v A, n int) []A {
	out := make([]A, n)
	for i := range out {
		out[i] = v
	}
	return out
}
