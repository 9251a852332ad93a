package main

import "testing"

func TestRandomSourceSeeded(t *testing.T) {
	rng := randomSource(1)
	for max := 1; max <= 6; max++ {
		if got := rng(max); got < 1 || got > max {
			t.Fatalf("got %d, expected a value in [1, %d]", got, max)
		}
	}
}

func TestRandomSourceUnseeded(t *testing.T) {
	if got := randomSource(-1)(4); got != 4 {
		t.Fatalf("got %d, expected the highest branch 4", got)
	}
}

func TestRandomSourceZeroMax(t *testing.T) {
	// #RANDOM 0 is grammar-valid; neither source may panic on it.
	if got := randomSource(1)(0); got != 0 {
		t.Fatalf("got %d, expected 0", got)
	}
	if got := randomSource(-1)(0); got != 0 {
		t.Fatalf("got %d, expected 0", got)
	}
}
