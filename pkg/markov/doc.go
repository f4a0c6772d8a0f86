/*
Package markov implements a word-level Markov chain that remembers the exact
punctuation and whitespace between words, and composes new text by walking the
chain outward from a seed word in both directions.

Text is split by a Lexer into alternating word and punctuation runs, framed by
Begin and End markers. A Chain interns every distinct run as a textlet and
records each observed (word, punctuation, word) transition as a counted edge,
indexed both forwards and backwards. A Selector decides which edge to follow at
each step of a composition.

A Chain is not safe for concurrent mutation. Callers that train from several
goroutines must serialise access themselves. Composition only reads the chain
and may run concurrently under a caller's read lock.

Chains can be exported to JSON and persisted to any database/sql SQLite driver
through a Store.
*/
package markov
