package analysis

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFencesLinearInterpolation(t *testing.T) {
	f, classes := ClassifyAll(decs("1", "2", "3", "4", "100"), DefaultIQRMultiplier)
	checks := map[string]decimal.Decimal{"Q1": f.Q1, "Q3": f.Q3, "IQR": f.IQR, "lower": f.Lower, "upper": f.Upper}
	want := map[string]string{"Q1": "2", "Q3": "4", "IQR": "2", "lower": "-1", "upper": "7"}
	for name, got := range checks {
		if !got.Equal(decimal.RequireFromString(want[name])) {
			t.Fatalf("%s: want %s, got %s", name, want[name], got)
		}
	}
	wantClass := []Class{Normal, Normal, Normal, Normal, Above}
	for i, c := range classes {
		if c != wantClass[i] {
			t.Fatalf("value %d: want %s, got %s", i, wantClass[i], c)
		}
	}
}

func TestFencesInterpolateBetweenRanks(t *testing.T) {
	// positions 0.75 and 2.25 over four values
	f := Fences(decs("40", "10", "30", "20"), DefaultIQRMultiplier)
	if !f.Q1.Equal(decimal.RequireFromString("17.5")) || !f.Q3.Equal(decimal.RequireFromString("32.5")) {
		t.Fatalf("want Q1=17.5 Q3=32.5, got Q1=%s Q3=%s", f.Q1, f.Q3)
	}
}

func TestFencesSingleValue(t *testing.T) {
	f, classes := ClassifyAll(decs("42"), DefaultIQRMultiplier)
	if !f.IQR.IsZero() || !f.Q1.Equal(f.Q3) {
		t.Fatalf("single value must give zero IQR, got %+v", f)
	}
	if classes[0] != Normal {
		t.Fatalf("single value must be normal, got %s", classes[0])
	}
}

func TestFencesBelow(t *testing.T) {
	_, classes := ClassifyAll(decs("-100", "10", "11", "12", "13"), DefaultIQRMultiplier)
	if classes[0] != Below {
		t.Fatalf("want below, got %s", classes[0])
	}
}

func TestFencesEmpty(t *testing.T) {
	f := Fences(nil, DefaultIQRMultiplier)
	if !f.Lower.IsZero() || !f.Upper.IsZero() {
		t.Fatalf("empty input must give zero fences")
	}
}
