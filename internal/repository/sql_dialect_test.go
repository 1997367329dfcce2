package repository

import "testing"

func TestPrefixLikeConditionByDialect(t *testing.T) {
	if got := prefixLikeConditionByDialect("sqlite", "key"); got != `key LIKE ? ESCAPE '\'` {
		t.Fatalf("sqlite condition mismatch, got %s", got)
	}
	if got := prefixLikeConditionByDialect("postgres", "key"); got != "key LIKE ?" {
		t.Fatalf("postgres condition mismatch, got %s", got)
	}
}

func TestPrefixLikePatternEscapesWildcards(t *testing.T) {
	got := prefixLikePattern("client:a_b%:orders_")
	want := `client:a\_b\%:orders\_%`
	if got != want {
		t.Fatalf("pattern mismatch, want %s got %s", want, got)
	}
}
