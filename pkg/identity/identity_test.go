package identity

import "testing"

func TestNormalizeCoverage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"USR-123", "USR-123"},
		{"USR123", "USR-123"},
		{"usr123", "USR-123"},
		{"usr-123", "USR-123"},
		{"123", "USR-123"},
		{"USR--123", "USR-123"},
		{"USR_123", "USR-123"},
		{" usr 123 ", "USR-123"},
		{"PRE-007", "PRE-007"},
		{"bot42", "BOT-42"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"USR-123", "usr123", "123", "PRE--007", "weird id", "a-b-c",
		"USR", "USR-", "_-_", "usr12a3", "",
	}
	for _, s := range inputs {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestNormalizeNeverPanics(t *testing.T) {
	for _, s := range []string{"", " ", "-", "---", "\x00", "привет", "😀-123"} {
		_ = Normalize(s) // must not panic on any input
	}
}

func TestIsWellFormed(t *testing.T) {
	good := []string{"USR-123", "usr123", "PRE-2024", "123"}
	for _, s := range good {
		if !IsWellFormed(s) {
			t.Fatalf("expected %q to be well formed", s)
		}
	}
	bad := []string{"", "USR-12", "USR-abc", "no id here"}
	for _, s := range bad {
		if IsWellFormed(s) {
			t.Fatalf("expected %q to be malformed", s)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("usr123", "USR-123") {
		t.Fatalf("expected usr123 == USR-123 after normalization")
	}
	if Equal("USR-123", "USR-124") {
		t.Fatalf("distinct ids must not compare equal")
	}
}
