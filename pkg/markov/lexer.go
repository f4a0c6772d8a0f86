package markov

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// asciiPunct is every ASCII punctuation character.
const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

type lexState uint8

const (
	lexBegin lexState = iota
	lexPostBegin
	lexPunct
	lexWord
	lexPreEnd
	lexEnd
	lexEmpty
)

// Lexer splits a sentence into Tokens. The stream always starts with Begin,
// then alternates Punct and Word runs, and finishes with a Punct run followed
// by End. Leading and trailing Punct runs may be empty, so that punctuation
// always separates two words (counting Begin and End as words).
//
// A Lexer is forward-only; construct a new one to lex the same text again.
type Lexer struct {
	src   string
	start int
	head  int
	state lexState
}

// NewLexer returns a Lexer positioned before the Begin token of text.
func NewLexer(text string) *Lexer {
	return &Lexer{src: text, state: lexBegin}
}

// Tokenize lexes text completely and returns every token, Begin and End
// included.
func Tokenize(text string) []Token {
	lex := NewLexer(text)
	var tokens []Token
	for {
		tok, ok := lex.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func isPunctRune(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	return r < utf8.RuneSelf && strings.ContainsRune(asciiPunct, r)
}

// classify returns the state the next character (or end of input) belongs to.
func (l *Lexer) classify() (lexState, int) {
	if l.head >= len(l.src) {
		if l.state == lexPunct || l.state == lexPostBegin {
			return lexEnd, 0
		}
		return lexPreEnd, 0
	}
	r, size := utf8.DecodeRuneInString(l.src[l.head:])
	if r != utf8.RuneError && isPunctRune(r) {
		return lexPunct, size
	}
	return lexWord, size
}

// Next returns the next token, or false once End has been returned.
func (l *Lexer) Next() (Token, bool) {
	switch l.state {
	case lexEmpty:
		return Token{}, false
	case lexBegin:
		l.state = lexPostBegin
		return Token{Kind: TokenBegin}, true
	case lexEnd:
		l.state = lexEmpty
		return Token{Kind: TokenEnd}, true
	case lexPreEnd:
		l.state = lexEnd
		return Token{Kind: TokenPunct}, true
	}

	for {
		next, size := l.classify()

		current := l.state
		if current == lexPostBegin {
			current = lexPunct
		}

		if next != current {
			text := l.src[l.start:l.head]
			kind := TokenPunct
			if current == lexWord {
				kind = TokenWord
			}
			l.state = next
			l.start = l.head
			return Token{Kind: kind, Text: text}, true
		}

		l.head += size
	}
}
