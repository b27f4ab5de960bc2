// Copyright 2026 The Tacitus Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compiler

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"
)

// tokenKind classifies a scanned token beyond what text/scanner itself
// reports: Tacitus words can contain almost any non-space rune, so the
// scanner is configured to hand back whole words as idents and this
// package decides afterwards whether a word is a number, a string, a
// ref sigil or a plain name.
type tokenKind int

const (
	tokWord tokenKind = iota
	tokNumber
	tokString
	tokRef    // &name
	tokAssign // ->
	tokEOF
)

type token struct {
	kind tokenKind
	text string  // original spelling, name (without sigil) for tokRef
	num  float32 // valid when kind == tokNumber
	pos  scanner.Position
}

// lexer wraps text/scanner configured the way the teacher's assembler
// configures it: words may contain letters, digits, symbols and
// punctuation, split only on whitespace. Double-quoted strings are
// scanned natively by text/scanner; everything else comes back as an
// Ident and is reclassified here.
type lexer struct {
	s      scanner.Scanner
	errs   []string
	peeked *token
}

func newLexer(name string, r io.Reader) *lexer {
	l := &lexer{}
	l.s.Init(r)
	l.s.Filename = name
	l.s.Mode = scanner.ScanIdents | scanner.ScanStrings | scanner.ScanComments
	l.s.IsIdentRune = isWordRune
	l.s.Error = func(s *scanner.Scanner, msg string) {
		l.errs = append(l.errs, msg)
	}
	return l
}

// isWordRune mirrors the teacher's assembler: a Tacitus word is any run
// of letters, digits, symbols or punctuation other than a double quote,
// so words like "+", "1+", "->" and "sq" are all single tokens split on
// whitespace, and a double quote is left to text/scanner's own string
// scanning.
func isWordRune(ch rune, i int) bool {
	if ch == '"' {
		return false
	}
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || unicode.IsSymbol(ch) || unicode.IsPunct(ch)
}

func (l *lexer) errorAt(pos scanner.Position, format string, args ...interface{}) {
	l.errs = append(l.errs, pos.String()+": "+fmt.Sprintf(format, args...))
}

// next returns the next token, or a tokEOF token at end of input.
func (l *lexer) next() token {
	if l.peeked != nil {
		t := *l.peeked
		l.peeked = nil
		return t
	}
	return l.scan()
}

// peek returns the next token without consuming it.
func (l *lexer) peek() token {
	if l.peeked == nil {
		t := l.scan()
		l.peeked = &t
	}
	return *l.peeked
}

func (l *lexer) scan() token {
	tok := l.s.Scan()
	pos := l.s.Position
	if !pos.IsValid() {
		pos = l.s.Pos()
	}
	switch tok {
	case scanner.EOF:
		return token{kind: tokEOF, pos: pos}
	case scanner.String:
		s := l.s.TokenText()
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			l.errorAt(pos, "invalid string literal %s", s)
			unquoted = s
		}
		return token{kind: tokString, text: unquoted, pos: pos}
	default:
		s := l.s.TokenText()
		return l.classify(s, pos)
	}
}

// classify turns a raw word into a number, a ref, an assignment arrow,
// or a plain word. Backtick-prefixed words (no-space string literals,
// e.g. `` `hello ``) are treated as strings with the backtick stripped.
func (l *lexer) classify(s string, pos scanner.Position) token {
	switch {
	case s == "->":
		return token{kind: tokAssign, text: s, pos: pos}
	case strings.HasPrefix(s, "&") && len(s) > 1:
		return token{kind: tokRef, text: s[1:], pos: pos}
	case strings.HasPrefix(s, "`") && len(s) > 1:
		return token{kind: tokString, text: s[1:], pos: pos}
	}
	if f, ok := parseNumber(s); ok {
		return token{kind: tokNumber, num: f, text: s, pos: pos}
	}
	return token{kind: tokWord, text: s, pos: pos}
}

func parseNumber(s string) (float32, bool) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, false
	}
	return float32(f), true
}
