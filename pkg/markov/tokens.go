package markov

import (
	"strings"
	"unicode/utf8"
)

// TokenKind identifies what a Token stands for.
type TokenKind uint8

const (
	// TokenBegin marks the start of a sentence. It carries no text.
	TokenBegin TokenKind = iota
	// TokenEnd marks the end of a sentence. It carries no text.
	TokenEnd
	// TokenWord is a run of word characters.
	TokenWord
	// TokenPunct is a run of punctuation and/or whitespace, possibly empty.
	TokenPunct
	// TokenTextlet is interned text resolved from a Chain, where the
	// word/punctuation distinction is no longer tracked.
	TokenTextlet
)

// String returns a short name for the kind, for debugging output.
func (k TokenKind) String() string {
	switch k {
	case TokenBegin:
		return "Begin"
	case TokenEnd:
		return "End"
	case TokenWord:
		return "Word"
	case TokenPunct:
		return "Punct"
	case TokenTextlet:
		return "Textlet"
	default:
		return "Unknown"
	}
}

// Token is a single unit of a sentence. For tokens produced by a Lexer, Text
// is a substring of the lexed source.
type Token struct {
	Kind TokenKind
	Text string
}

// IsSentinel reports whether the token is a Begin or End marker.
func (t Token) IsSentinel() bool {
	return t.Kind == TokenBegin || t.Kind == TokenEnd
}

// String returns the text the token contributes to a recomposed sentence.
// Sentinels contribute nothing.
func (t Token) String() string {
	if t.IsSentinel() {
		return ""
	}
	return t.Text
}

// Len returns the number of characters the token contributes to a sentence.
func (t Token) Len() int {
	return utf8.RuneCountInString(t.String())
}

// Recompose joins tokens back into a string. For any s,
// Recompose(Tokenize(s)) == s.
func Recompose(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.String())
	}
	return sb.String()
}

// TokenList is a composed sentence: textlets and the punctuation between
// them, in reading order, without Begin or End markers.
type TokenList []Token

// String recomposes the list into readable text.
func (l TokenList) String() string {
	return Recompose(l)
}

// Len returns the total character length of the recomposed text.
func (l TokenList) Len() int {
	n := 0
	for _, tok := range l {
		n += tok.Len()
	}
	return n
}

// IsEmpty reports whether the list recomposes to the empty string.
func (l TokenList) IsEmpty() bool {
	for _, tok := range l {
		if tok.String() != "" {
			return false
		}
	}
	return true
}
