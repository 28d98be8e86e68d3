package stringutils

import "testing"

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	if got := Truncate("héllo wörld", 5); got != "héllo..." {
		t.Errorf("Truncate multibyte = %q", got)
	}
}

func TestMask(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"abc":        "****",
		"EAAB12345x": "****345x",
	}
	for in, want := range cases {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
