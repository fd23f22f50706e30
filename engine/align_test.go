// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import "testing"

func TestAlign(t *testing.T) {
	for _, x := range [...]struct{ v, a, want int64 }{
		{0, 1, 0},
		{0, 256, 0},
		{1, 256, 256},
		{255, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{100, 128, 128},
		{130, 64, 192},
		{7, 8, 8},
	} {
		if have := Align(x.v, x.a); have != x.want {
			t.Fatalf("Align(%d, %d):\nhave %d\nwant %d", x.v, x.a, have, x.want)
		}
	}
}

func TestAlignPanic(t *testing.T) {
	for _, a := range [...]int64{0, -1, 3, 100} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("Align(1, %d): expected panic", a)
				}
			}()
			Align(1, a)
		}()
	}
}
