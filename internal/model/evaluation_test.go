package model

import "testing"

func TestRatingDeltas(t *testing.T) {
	cases := []struct {
		kind  RatingKind
		delta float64
	}{
		{RatingExcellent, 2},
		{RatingGood, 1},
		{RatingNeutral, 0},
		{RatingBad, -1},
		{RatingTerrible, -2},
	}
	for _, tc := range cases {
		d, ok := tc.kind.Delta()
		if !ok {
			t.Fatalf("%s: expected known kind", tc.kind)
		}
		if d != tc.delta {
			t.Fatalf("%s: expected delta %.0f, got %.0f", tc.kind, tc.delta, d)
		}
	}
}

func TestRatingUnknownKind(t *testing.T) {
	if _, ok := RatingKind("AMAZING").Delta(); ok {
		t.Fatal("expected unknown kind to be rejected")
	}
}
