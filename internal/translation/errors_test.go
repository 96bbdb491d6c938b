package translation

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAbbreviate(t *testing.T) {
	t.Parallel()

	if got := abbreviate("short", 10); got != "short" {
		t.Fatalf("short input changed: %q", got)
	}
	if got := abbreviate("abcdefghij", 8); got != "abcde..." {
		t.Fatalf("unexpected ascii cut: %q", got)
	}
	if got := abbreviate("abcdef", 2); got != "ab" {
		t.Fatalf("unexpected tiny cut: %q", got)
	}
}

func TestAbbreviate_KeepsRuneBoundaries(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("翻訳エラー", 20)
	for n := 1; n < 40; n++ {
		got := abbreviate(body, n)
		if !utf8.ValidString(got) {
			t.Fatalf("abbreviate(_, %d) split a rune: %q", n, got)
		}
		if len(got) > n {
			t.Fatalf("abbreviate(_, %d) returned %d bytes", n, len(got))
		}
	}
	if got := abbreviate(body, 8); got != "翻..." {
		t.Fatalf("unexpected multi-byte cut: %q", got)
	}
}
