package numeric

import "testing"

func TestCoerce_ValidNumbers(t *testing.T) {
	c := &Coercer{}

	cases := map[string]float64{
		"3.14":    3.14,
		"  42  ":  42,
		"-0.5":    -0.5,
		"0":       0,
		"1e3":     1000,
		"6754.25": 6754.25,
	}
	for in, want := range cases {
		if got := c.Coerce(in); got != want {
			t.Errorf("Coerce(%q) = %v, want %v", in, got, want)
		}
	}
	if c.Failures() != 0 {
		t.Errorf("expected 0 failures, got %d", c.Failures())
	}
}

func TestCoerce_SubstitutesDefault(t *testing.T) {
	c := &Coercer{}

	for i, in := range []string{"", "   ", "nan", "NaN", "NAN", "abc", "12x"} {
		if got := c.Coerce(in); got != 0.0 {
			t.Errorf("Coerce(%q) = %v, want 0.0", in, got)
		}
		if got := c.Failures(); got != uint64(i+1) {
			t.Errorf("after Coerce(%q): failures = %d, want %d", in, got, i+1)
		}
	}
}

func TestCoerce_OnErrorHook(t *testing.T) {
	calls := 0
	c := &Coercer{OnError: func() { calls++ }}

	c.Coerce("bad")
	c.Coerce("1.5")
	c.Coerce("")

	if calls != 2 {
		t.Errorf("expected 2 hook calls, got %d", calls)
	}
}
