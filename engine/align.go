// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

// Align rounds v up to the nearest multiple of a.
// a must be a power of two.
func Align(v, a int64) int64 {
	if a <= 0 || a&(a-1) != 0 {
		panic("engine.Align: alignment is not a power of two")
	}
	return (v + a - 1) &^ (a - 1)
}
