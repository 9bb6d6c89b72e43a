// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package lex

import "github.com/consensys/go-qflow/pkg/util/source"

// Token associates a kind with a given range of characters in the text being
// scanned.
type Token struct {
	Kind uint
	Span source.Span
}

// Rule associates the characters accepted by a scanner with a token kind.
type Rule struct {
	scanner Scanner
	kind    uint
}

// NewRule constructs a new lexing rule which maps matching characters to a
// given token kind.
func NewRule(scanner Scanner, kind uint) Rule {
	return Rule{scanner, kind}
}

// Lexer splits a given text into tokens.  Rules are tried in the order given,
// and the first rule to accept any characters wins.
type Lexer struct {
	items []rune
	index int
	rules []Rule
}

// NewLexer constructs a new lexer with a given set of lexing rules.
func NewLexer(input []rune, rules ...Rule) *Lexer {
	return &Lexer{input, 0, rules}
}

// Index returns the current position within the text.
func (p *Lexer) Index() int {
	return p.index
}

// Remaining determines how many characters from the text were not consumed.
func (p *Lexer) Remaining() int {
	return max(0, len(p.items)-p.index)
}

// Next scans the next token, returning false if no rule matched.  The final
// token produced for any text is matched by an Eof rule (if one is given).
func (p *Lexer) Next() (Token, bool) {
	if p.index > len(p.items) {
		return Token{}, false
	}
	//
	for _, r := range p.rules {
		if n := r.scanner(p.items[p.index:]); n > 0 {
			end := min(len(p.items), p.index+int(n))
			token := Token{r.kind, source.NewSpan(p.index, end)}
			// Eof consumes nothing, but must still terminate.
			if end == p.index {
				p.index++
			} else {
				p.index = end
			}
			//
			return token, true
		}
	}
	//
	return Token{}, false
}

// Collect scans all remaining tokens in one go.  Scanning stops at the first
// character which no rule accepts, in which case Remaining() is non-zero.
func (p *Lexer) Collect() []Token {
	var tokens []Token
	//
	for {
		token, ok := p.Next()
		if !ok {
			return tokens
		}
		//
		tokens = append(tokens, token)
	}
}
