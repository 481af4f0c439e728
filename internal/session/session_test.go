package session

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"  ":      "",
		"alpha":   "alpha",
		" alpha ": "alpha",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSafeName(t *testing.T) {
	if got := SafeName(""); got != "default" {
		t.Fatalf("SafeName(\"\") = %q, want default", got)
	}
	if got := SafeName("feature/login"); got != "feature-login" {
		t.Fatalf("SafeName(feature/login) = %q", got)
	}
	if got := SafeName("a.b c"); got != "a-b-c" {
		t.Fatalf("SafeName(a.b c) = %q", got)
	}
	if got := SafeName("worktree-123"); got != "worktree-123" {
		t.Fatalf("SafeName(worktree-123) = %q, want unchanged", got)
	}
}
