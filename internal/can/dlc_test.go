package can

import "testing"

func TestDLC2Len_Table(t *testing.T) {
	cases := map[uint8]uint8{
		0: 0, 8: 8, 9: 12, 10: 16, 11: 20, 12: 24, 13: 32, 14: 48, 15: 64,
	}
	for dlc, want := range cases {
		if got := DLC2Len(dlc); got != want {
			t.Errorf("DLC2Len(%d) = %d, want %d", dlc, got, want)
		}
	}
}

func TestLen2DLC_CoversEveryLength(t *testing.T) {
	for n := 0; n <= FDMaxDLen; n++ {
		dlc, err := Len2DLC(n)
		if err != nil {
			t.Fatalf("Len2DLC(%d): %v", n, err)
		}
		if got := int(DLC2Len(dlc)); got < n {
			t.Errorf("Len2DLC(%d) = %d decodes to %d, shorter than input", n, dlc, got)
		}
		// the chosen DLC must be minimal
		if dlc > 0 {
			if prev := int(DLC2Len(dlc - 1)); prev >= n {
				t.Errorf("Len2DLC(%d) = %d not minimal, DLC %d already covers it", n, dlc, dlc-1)
			}
		}
	}
	if _, err := Len2DLC(65); err == nil {
		t.Error("Len2DLC(65) accepted")
	}
	if _, err := Len2DLC(-1); err == nil {
		t.Error("Len2DLC(-1) accepted")
	}
}

func TestSanitizeFDLen_Idempotent(t *testing.T) {
	for n := 0; n <= FDMaxDLen; n++ {
		once, err := SanitizeFDLen(n)
		if err != nil {
			t.Fatalf("SanitizeFDLen(%d): %v", n, err)
		}
		twice, err := SanitizeFDLen(once)
		if err != nil {
			t.Fatalf("SanitizeFDLen(%d): %v", once, err)
		}
		if once != twice {
			t.Errorf("SanitizeFDLen not idempotent at %d: %d then %d", n, once, twice)
		}
	}
	if got, _ := SanitizeFDLen(9); got != 12 {
		t.Errorf("SanitizeFDLen(9) = %d, want 12", got)
	}
}
