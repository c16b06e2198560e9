package engine

import (
	"testing"

	"expandd/internal/rules"
)

func TestMatchExpansion(t *testing.T) {
	snapshot := []rules.Rule{
		{Trigger: ";email", Replacement: "user@example.com"},
		{Trigger: "brb", Replacement: "be right back"},
	}

	m, ok := matchExpansion("hello ;email ", ' ', snapshot)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Rule.Trigger != ";email" {
		t.Errorf("matched %q, want %q", m.Rule.Trigger, ";email")
	}
	// Six trigger runes plus the delimiter.
	if m.Backspaces != 7 {
		t.Errorf("backspaces = %d, want 7", m.Backspaces)
	}
}

func TestMatchRequiresDelimiterAfterTrigger(t *testing.T) {
	snapshot := []rules.Rule{{Trigger: "bar", Replacement: "BAR"}}

	// "foobar " ends in "bar ", and suffix matching does not know about
	// word starts. The trigger plus delimiter is a suffix, so this matches.
	if _, ok := matchExpansion("foobar ", ' ', snapshot); !ok {
		t.Error("suffix match should fire inside a longer word")
	}

	// No delimiter directly after the trigger.
	if _, ok := matchExpansion("barx ", ' ', snapshot); ok {
		t.Error("should not match with characters between trigger and delimiter")
	}
}

func TestMatchFirstRuleWins(t *testing.T) {
	snapshot := []rules.Rule{
		{Trigger: "abc", Replacement: "first"},
		{Trigger: "abc", Replacement: "second"},
	}
	m, ok := matchExpansion("abc\n", '\n', snapshot)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Rule.Replacement != "first" {
		t.Errorf("matched %q, want the first rule", m.Rule.Replacement)
	}
}

func TestMatchSkipsEmptyTriggers(t *testing.T) {
	snapshot := []rules.Rule{
		{Trigger: "", Replacement: "never"},
		{Trigger: "ok", Replacement: "okay"},
	}
	m, ok := matchExpansion("ok\t", '\t', snapshot)
	if !ok || m.Rule.Replacement != "okay" {
		t.Errorf("match = %+v ok=%v, want the %q rule", m, ok, "ok")
	}
}

func TestMatchUnicodeBackspaceCount(t *testing.T) {
	snapshot := []rules.Rule{{Trigger: ";日本", Replacement: "Japan"}}
	m, ok := matchExpansion("say ;日本 ", ' ', snapshot)
	if !ok {
		t.Fatal("expected a match")
	}
	// Backspaces count runes, not bytes.
	if m.Backspaces != 4 {
		t.Errorf("backspaces = %d, want 4", m.Backspaces)
	}
}

func TestMatchNoRules(t *testing.T) {
	if _, ok := matchExpansion("anything ", ' ', nil); ok {
		t.Error("no rules should never match")
	}
}

func TestIsDelimiter(t *testing.T) {
	for _, r := range []rune{' ', '\n', '\t'} {
		if !isDelimiter(r) {
			t.Errorf("isDelimiter(%q) = false", r)
		}
	}
	for _, r := range []rune{'a', '.', ';', '\r', 0} {
		if isDelimiter(r) {
			t.Errorf("isDelimiter(%q) = true", r)
		}
	}
}
