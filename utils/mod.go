package utils

import "golang.org/x/exp/constraints"

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

func Sum[T constraints.Float](xs []T) T {
	var total T
	for _, x := range xs {
		total += x
	}
	return total
}

// Normalize scales xs in place to sum to 1. When the sum is not positive the
// weights are made uniform and Normalize reports false.
func Normalize[T constraints.Float](xs []T) bool {
	if len(xs) == 0 {
		return true
	}
	total := Sum(xs)
	if total <= 0 || total != total {
		u := 1 / T(len(xs))
		for i := range xs {
			xs[i] = u
		}
		return false
	}
	for i := range xs {
		xs[i] /= total
	}
	return true
}
