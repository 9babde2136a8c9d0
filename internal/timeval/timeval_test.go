package timeval

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want Time }{
		{Time{1, 0}, Time{1, 0}},
		{Time{1, 1_000_000}, Time{2, 0}},
		{Time{1, 2_500_000}, Time{3, 500_000}},
		{Time{1, -1}, Time{0, 999_999}},
		{Time{0, -2_000_001}, Time{-3, 999_999}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestAddSub(t *testing.T) {
	a := Time{10, 900_000}
	b := Time{0, 200_000}
	if got := a.Add(b); got != (Time{11, 100_000}) {
		t.Errorf("Add = %+v", got)
	}
	if got := a.Sub(b); got != (Time{10, 700_000}) {
		t.Errorf("Sub = %+v", got)
	}
	if got := b.Sub(a); got != (Time{-11, 300_000}) {
		t.Errorf("negative Sub = %+v", got)
	}
}

func TestDiffMS_AddMS(t *testing.T) {
	a := Time{2, 500_000}
	b := Time{1, 250_000}
	if got := DiffMS(a, b); got != 1250 {
		t.Errorf("DiffMS = %d", got)
	}
	if got := AddMS(b, 1250); got != a {
		t.Errorf("AddMS = %+v", got)
	}
}

func TestFromTime(t *testing.T) {
	ref := time.Unix(1693000000, 123456789)
	tv := FromTime(ref)
	if tv.Sec != 1693000000 || tv.USec != 123456 {
		t.Errorf("FromTime = %+v", tv)
	}
}
