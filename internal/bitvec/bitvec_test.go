// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package bitvec

import (
	"testing"
	"unsafe"
)

func TestNbit(t *testing.T) {
	for _, x := range [...][2]int{
		{int(unsafe.Sizeof(uint8(0))) * 8, (&V[uint8]{}).nbit()},
		{int(unsafe.Sizeof(uint16(0))) * 8, (&V[uint16]{}).nbit()},
		{int(unsafe.Sizeof(uint32(0))) * 8, (&V[uint32]{}).nbit()},
		{int(unsafe.Sizeof(uint64(0))) * 8, (&V[uint64]{}).nbit()},
	} {
		if x[0] != x[1] {
			t.Fatalf("V[T].nbit:\nhave %d\nwant %d", x[0], x[1])
		}
	}
}

func TestZero(t *testing.T) {
	var v16 V[uint16]
	if n := v16.Len(); n != 0 {
		t.Fatalf("v16.Len:\nhave %d\nwant 0", n)
	}
	if n := v16.Rem(); n != 0 {
		t.Fatalf("v16.Rem:\nhave %d\nwant 0", n)
	}
	if i, ok := v16.Search(); ok {
		t.Fatalf("v16.Search:\nhave %d, true\nwant _, false", i)
	}
}

func TestGrow(t *testing.T) {
	var v32 V[uint32]
	for _, x := range [...]struct {
		nplus, wantLen int
	}{
		{1, 32},
		{2, 96},
		{0, 96},
		{-1, 96},
		{17, 640},
	} {
		if n, i := v32.Len(), v32.Grow(x.nplus); n != i {
			t.Fatalf("v32.Grow:\nhave %d\nwant %d", i, n)
		}
		if n := v32.Len(); n != x.wantLen {
			t.Fatalf("v32.Grow: Len:\nhave %d\nwant %d", n, x.wantLen)
		}
		if n := v32.Rem(); n != x.wantLen {
			t.Fatalf("v32.Grow: Rem:\nhave %d\nwant %d", n, x.wantLen)
		}
	}
}

func TestSetUnset(t *testing.T) {
	var v8 V[uint8]
	v8.Grow(3)
	v8.Set(6)
	v8.Set(1)
	v8.Set(1)
	if v8.s[0] != 0x42 {
		t.Fatalf("v8.s[0]:\nhave 0x%x\nwant 0x42", v8.s[0])
	}
	if n := v8.Rem(); n != 22 {
		t.Fatalf("v8.Rem:\nhave %d\nwant 22", n)
	}
	v8.Set(21)
	v8.Unset(6)
	v8.Unset(23)
	if v8.s[0] != 0x02 || v8.s[2] != 0x20 {
		t.Fatalf("v8.s:\nhave %x\nwant [2 0 20]", v8.s)
	}
	if n := v8.Rem(); n != 22 {
		t.Fatalf("v8.Rem:\nhave %d\nwant 22", n)
	}
	for i := range v8.Len() {
		if v8.IsSet(i) != (i == 1 || i == 21) {
			t.Fatalf("v8.IsSet(%d):\nhave %t\nwant %t", i, v8.IsSet(i), !v8.IsSet(i))
		}
	}
	v8.Clear()
	if n := v8.Rem(); n != v8.Len() {
		t.Fatalf("v8.Clear: Rem:\nhave %d\nwant %d", n, v8.Len())
	}
}

func TestSearch(t *testing.T) {
	var v32 V[uint32]
	v32.Grow(4)
	for i := range 70 {
		v32.Set(i)
	}
	if i, ok := v32.Search(); !ok || i != 70 {
		t.Fatalf("v32.Search:\nhave %d, %t\nwant 70, true", i, ok)
	}
	v32.Unset(33)
	if i, ok := v32.Search(); !ok || i != 33 {
		t.Fatalf("v32.Search:\nhave %d, %t\nwant 33, true", i, ok)
	}
	for i := range v32.Len() {
		v32.Set(i)
	}
	if i, ok := v32.Search(); ok {
		t.Fatalf("v32.Search:\nhave %d, true\nwant _, false", i)
	}
}

func TestAlloc(t *testing.T) {
	var v8 V[uint8]
	for i := range 20 {
		if x := v8.Alloc(); x != i {
			t.Fatalf("v8.Alloc:\nhave %d\nwant %d", x, i)
		}
	}
	if n := v8.Len(); n != 24 {
		t.Fatalf("v8.Len:\nhave %d\nwant 24", n)
	}
	v8.Unset(5)
	if x := v8.Alloc(); x != 5 {
		t.Fatalf("v8.Alloc:\nhave %d\nwant 5", x)
	}
	if x := v8.Alloc(); x != 20 {
		t.Fatalf("v8.Alloc:\nhave %d\nwant 20", x)
	}
}
