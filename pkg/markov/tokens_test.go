package markov

import (
	"reflect"
	"testing"
)

func TestRecompose(t *testing.T) {
	tokens := []Token{
		{Kind: TokenBegin},
		{Kind: TokenWord, Text: "Fancy"},
		{Kind: TokenPunct, Text: " "},
		{Kind: TokenWord, Text: "hat"},
		{Kind: TokenPunct, Text: ","},
		{Kind: TokenPunct, Text: " "},
		{Kind: TokenWord, Text: "mate"},
		{Kind: TokenPunct, Text: "."},
		{Kind: TokenEnd},
	}

	if got := Recompose(tokens); got != "Fancy hat, mate." {
		t.Errorf("Recompose() = %q, want %q", got, "Fancy hat, mate.")
	}
}

func TestSentinelsContributeNothing(t *testing.T) {
	for _, tok := range []Token{{Kind: TokenBegin, Text: "x"}, {Kind: TokenEnd, Text: "y"}} {
		if tok.String() != "" || tok.Len() != 0 {
			t.Errorf("%v token contributed %q (len %d)", tok.Kind, tok.String(), tok.Len())
		}
	}
}

func TestTokenLenCountsCharacters(t *testing.T) {
	tok := Token{Kind: TokenWord, Text: "naïve"}
	if tok.Len() != 5 {
		t.Errorf("expected 5 characters, got %d", tok.Len())
	}
}

func TestTokenList(t *testing.T) {
	list := TokenList{
		{Kind: TokenTextlet, Text: "a"},
		{Kind: TokenTextlet, Text: " "},
		{Kind: TokenTextlet, Text: "lamb"},
		{Kind: TokenTextlet, Text: ""},
	}
	if list.String() != "a lamb" {
		t.Errorf("String() = %q", list.String())
	}
	if list.Len() != 6 {
		t.Errorf("Len() = %d, want 6", list.Len())
	}
	if list.IsEmpty() {
		t.Error("IsEmpty() = true for a non-empty list")
	}
	if !(TokenList{{Kind: TokenTextlet}}).IsEmpty() {
		t.Error("IsEmpty() = false for a list of empty textlets")
	}
	if !reflect.DeepEqual(TokenList(nil).String(), "") {
		t.Error("nil list should recompose to the empty string")
	}
}
