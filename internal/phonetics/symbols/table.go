// Package symbols holds the immutable mapping from source-notation tokens to
// IPA and the prefix index the tokenizer walks for longest-match lookups.
// A Table is built once and is safe for concurrent reads without locking.
package symbols

import (
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"
)

// Entry is one token of the source notation and its IPA replacement.
type Entry struct {
	Token string
	IPA   string
}

// node is a rune trie node. terminal marks a complete token.
type node struct {
	children map[rune]*node
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Table maps tokens to IPA values. The trie is derived from the mapping at
// construction time and never changes afterwards.
type Table struct {
	values     map[string]string
	root       *node
	duplicates []string
	maxRunes   int
}

// New builds a Table from entries. Repeated tokens collapse to the last
// value; they are reported by Duplicates. An empty token or a token that is
// not valid UTF-8 is an authoring error.
func New(entries []Entry) (*Table, error) {
	t := &Table{
		values: make(map[string]string, len(entries)),
		root:   newNode(),
	}
	for i, e := range entries {
		if e.Token == "" {
			return nil, fmt.Errorf("entry %d: empty token", i)
		}
		if !utf8.ValidString(e.Token) {
			return nil, fmt.Errorf("entry %d: token %q is not valid UTF-8", i, e.Token)
		}
		if _, seen := t.values[e.Token]; seen {
			t.duplicates = append(t.duplicates, e.Token)
		}
		t.values[e.Token] = e.IPA
	}
	for token := range t.values {
		t.insert(token)
	}
	return t, nil
}

// MustNew is like New but panics on malformed entries.
func MustNew(entries []Entry) *Table {
	t, err := New(entries)
	if err != nil {
		panic(fmt.Sprintf("symbols: %v", err))
	}
	return t
}

var defaultTable = sync.OnceValue(func() *Table {
	return MustNew(MerriamWebster)
})

// Default returns the process-wide Merriam-Webster table.
func Default() *Table {
	return defaultTable()
}

func (t *Table) insert(token string) {
	n := t.root
	count := 0
	for _, r := range token {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
		count++
	}
	n.terminal = true
	if count > t.maxRunes {
		t.maxRunes = count
	}
}

// walk follows s through the trie and returns the node it ends on, or nil
// when no token starts with s.
func (t *Table) walk(s string) *node {
	n := t.root
	for _, r := range s {
		n = n.children[r]
		if n == nil {
			return nil
		}
	}
	return n
}

// Lookup returns the IPA value for an exact token.
func (t *Table) Lookup(token string) (string, bool) {
	v, ok := t.values[token]
	return v, ok
}

// HasPrefix reports whether at least one token starts with s.
func (t *Table) HasPrefix(s string) bool {
	return s != "" && t.walk(s) != nil
}

// IsToken reports whether s is itself a complete token.
func (t *Table) IsToken(s string) bool {
	_, ok := t.values[s]
	return ok
}

// Len returns the number of distinct tokens.
func (t *Table) Len() int {
	return len(t.values)
}

// MaxTokenRunes returns the length in code points of the longest token.
func (t *Table) MaxTokenRunes() int {
	return t.maxRunes
}

// Duplicates lists tokens that appeared more than once in the source
// entries, in the order the repeats were seen.
func (t *Table) Duplicates() []string {
	out := make([]string, len(t.duplicates))
	copy(out, t.duplicates)
	return out
}

// Ambiguous returns, sorted, the first characters shared by more than one
// token. At these characters a one-rune match cannot be accepted without
// looking further ahead.
func (t *Table) Ambiguous() []string {
	var out []string
	for r, child := range t.root.children {
		if countTokens(child) > 1 {
			out = append(out, string(r))
		}
	}
	sort.Strings(out)
	return out
}

func countTokens(n *node) int {
	count := 0
	if n.terminal {
		count++
	}
	for _, child := range n.children {
		count += countTokens(child)
	}
	return count
}

// Tokens returns all tokens in sorted order.
func (t *Table) Tokens() []string {
	out := make([]string, 0, len(t.values))
	for token := range t.values {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// Entries returns all entries sorted by token.
func (t *Table) Entries() []Entry {
	tokens := t.Tokens()
	out := make([]Entry, len(tokens))
	for i, token := range tokens {
		out[i] = Entry{Token: token, IPA: t.values[token]}
	}
	return out
}
