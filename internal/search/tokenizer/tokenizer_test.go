package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenizeLowercasesAndSplits(t *testing.T) {
	tokens := Tokenize("The Harrison ESTATE, probate!")
	want := []Token{
		{Term: "the", Position: 0},
		{Term: "harrison", Position: 1},
		{Term: "estate", Position: 2},
		{Term: "probate", Position: 3},
	}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("Tokenize() = %v, want %v", tokens, want)
	}
}

func TestTokenizeKeepsHyphenatedWords(t *testing.T) {
	tokens := Tokenize("cross-examination of the witness")
	if tokens[0].Term != "cross-examination" {
		t.Errorf("expected hyphenated token to survive, got %q", tokens[0].Term)
	}
}

func TestTokenizeKeepsDigitsAndShortWords(t *testing.T) {
	// Citation forms like "in re" and docket numbers must not be dropped:
	// there is no stop-word list and no minimum length above 1.
	tokens := Tokenize("In re Smith 2024")
	want := []string{"in", "re", "smith", "2024"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Term != w {
			t.Errorf("token %d = %q, want %q", i, tokens[i].Term, w)
		}
	}
}

func TestTokenizeEmptyAndPunctuationOnly(t *testing.T) {
	if got := Tokenize(""); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %v, want empty", got)
	}
	if got := Tokenize("!!! ... ---"); len(got) != 0 {
		t.Errorf("Tokenize(punctuation) = %v, want empty", got)
	}
}

func TestTokenizeDiscardsAllowListOnlyRuns(t *testing.T) {
	// A hyphen keeps words like "re-examination" whole, but a run of
	// hyphens with no letter or digit is not a term; surviving tokens
	// keep contiguous positions.
	tokens := Tokenize("--- re-examination -- estate ---")
	want := []Token{
		{Term: "re-examination", Position: 0},
		{Term: "estate", Position: 1},
	}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("Tokenize() = %v, want %v", tokens, want)
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	text := "Settlement agreement executed 2024-03-14 re: Okafor"
	first := Tokenize(text)
	for i := 0; i < 10; i++ {
		if got := Tokenize(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
}

func TestTokenizeUnicode(t *testing.T) {
	tokens := Tokenize("Café déposé")
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %v", tokens)
	}
	if tokens[0].Term != "café" {
		t.Errorf("expected accented letters preserved, got %q", tokens[0].Term)
	}
}

func TestTermsDeduplicates(t *testing.T) {
	tok := New("-")
	terms := tok.Terms("estate estate probate Estate")
	want := []string{"estate", "probate"}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("Terms() = %v, want %v", terms, want)
	}
}

func TestCustomWordChars(t *testing.T) {
	tok := New("_")
	tokens := tok.Tokenize("case_number re-examination")
	if tokens[0].Term != "case_number" {
		t.Errorf("underscore not treated as word char: %q", tokens[0].Term)
	}
	// hyphen is not in this tokenizer's allow-list, so it splits
	if len(tokens) != 3 {
		t.Errorf("expected hyphen to split, got %v", tokens)
	}
}
