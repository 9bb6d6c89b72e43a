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
package circuit

import (
	"slices"
	"strconv"

	"github.com/consensys/go-qflow/pkg/util/source"
	"github.com/consensys/go-qflow/pkg/util/source/lex"
)

// END_OF signals "end of file"
const END_OF uint = 0

// WHITESPACE signals spaces or tabs
const WHITESPACE uint = 1

// NEWLINE signals the end of a line
const NEWLINE uint = 2

// COMMENT signals a comment running to the end of the line
const COMMENT uint = 3

// IDENTIFIER signals a gate name or keyword
const IDENTIFIER uint = 4

// NUMBER signals a (possibly signed or fractional) number
const NUMBER uint = 5

// LBRACE signals "left brace"
const LBRACE uint = 6

// RBRACE signals "right brace"
const RBRACE uint = 7

// LCURLY signals "left curly brace"
const LCURLY uint = 8

// RCURLY signals "right curly brace"
const RCURLY uint = 9

// LSQUARE signals "left square brace"
const LSQUARE uint = 10

// RSQUARE signals "right square brace"
const RSQUARE uint = 11

// COMMA signals a comma
const COMMA uint = 12

var rules = []lex.Rule{
	lex.NewRule(lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t'), lex.Unit('\r'))), WHITESPACE),
	lex.NewRule(lex.Unit('\n'), NEWLINE),
	lex.NewRule(comment, COMMENT),
	lex.NewRule(lex.Unit('('), LBRACE),
	lex.NewRule(lex.Unit(')'), RBRACE),
	lex.NewRule(lex.Unit('{'), LCURLY),
	lex.NewRule(lex.Unit('}'), RCURLY),
	lex.NewRule(lex.Unit('['), LSQUARE),
	lex.NewRule(lex.Unit(']'), RSQUARE),
	lex.NewRule(lex.Unit(','), COMMA),
	lex.NewRule(lex.Number, NUMBER),
	lex.NewRule(lex.Identifier, IDENTIFIER),
	lex.NewRule(lex.Eof(), END_OF),
}

// Rule for describing comments, which run from '#' to the end of the line.
func comment(items []rune) uint {
	if len(items) == 0 || items[0] != '#' {
		return 0
	}
	//
	return 1 + lex.Until('\n')(items[1:])
}

// Parse a circuit given in the textual circuit format.
func Parse(text string) (*Circuit, error) {
	circuit, errs := ParseFile(source.NewSourceFile("circuit", []byte(text)))
	if len(errs) > 0 {
		return nil, &errs[0]
	}
	//
	return circuit, nil
}

// MustParse is like Parse, but panics on malformed input.
func MustParse(text string) *Circuit {
	c, err := Parse(text)
	if err != nil {
		panic(err)
	}
	//
	return c
}

// ParseFile parses a source file in the textual circuit format, producing
// either a circuit or one or more syntax errors.
func ParseFile(srcfile *source.File) (*Circuit, []source.SyntaxError) {
	var (
		lexer  = lex.NewLexer(srcfile.Contents(), rules...)
		tokens = lexer.Collect()
	)
	// Check whether anything was left (if so this is an error)
	if lexer.Remaining() != 0 {
		start := lexer.Index()
		err := srcfile.SyntaxError(source.NewSpan(start, start+1), "unknown text encountered")
		//
		return nil, []source.SyntaxError{*err}
	}
	// Remove whitespace and comments
	tokens = slices.DeleteFunc(tokens, func(t lex.Token) bool {
		return t.Kind == WHITESPACE || t.Kind == COMMENT
	})
	//
	parser := &Parser{srcfile, tokens, 0}
	//
	return parser.parseBlock(false)
}

// Parser is a recursive-descent parser for the textual circuit format.
type Parser struct {
	srcfile *source.File
	tokens  []lex.Token
	// Position within the tokens
	index int
}

// Parse a sequence of lines up to the end of file or, when nested, the closing
// '}' of a repeat block.
func (p *Parser) parseBlock(nested bool) (*Circuit, []source.SyntaxError) {
	var (
		circuit = &Circuit{}
		errs    []source.SyntaxError
	)
	//
	for {
		lookahead := p.lookahead()
		//
		switch {
		case p.match(NEWLINE):
			continue
		case lookahead.Kind == END_OF:
			if nested {
				return nil, p.syntaxErrors(lookahead, "missing '}'")
			}
			//
			return circuit, nil
		case lookahead.Kind == RCURLY:
			if !nested {
				return nil, p.syntaxErrors(lookahead, "unexpected '}'")
			}
			//
			p.index++
			//
			return circuit, nil
		case lookahead.Kind == IDENTIFIER && p.string(lookahead) == "REPEAT":
			errs = p.parseRepeat(circuit)
		default:
			errs = p.parseInstruction(circuit)
		}
		//
		if len(errs) > 0 {
			return nil, errs
		} else if !p.follows(NEWLINE, END_OF, RCURLY) {
			return nil, p.syntaxErrors(p.lookahead(), "expected end of line")
		}
	}
}

func (p *Parser) parseRepeat(circuit *Circuit) []source.SyntaxError {
	var (
		count uint
		body  *Circuit
		errs  []source.SyntaxError
	)
	// Skip "REPEAT"
	p.index++
	//
	if count, errs = p.parseUnsigned(); len(errs) > 0 {
		return errs
	} else if _, errs = p.expect(LCURLY); len(errs) > 0 {
		return errs
	} else if body, errs = p.parseBlock(true); len(errs) > 0 {
		return errs
	}
	//
	circuit.ops = append(circuit.ops, &Repeat{count, body})
	//
	return nil
}

func (p *Parser) parseInstruction(circuit *Circuit) []source.SyntaxError {
	var (
		start   = p.index
		args    []float64
		targets []Target
		target  Target
	)
	//
	name, errs := p.expect(IDENTIFIER)
	if len(errs) > 0 {
		return errs
	}
	//
	gate, err := Lookup(p.string(name))
	if err != nil {
		return p.syntaxErrors(name, err.Error())
	}
	// Optional arguments
	if p.follows(LBRACE) {
		if args, errs = p.parseArgs(); len(errs) > 0 {
			return errs
		}
	}
	// Targets
	for p.follows(NUMBER, IDENTIFIER) {
		if target, errs = p.parseTarget(); len(errs) > 0 {
			return errs
		}
		//
		targets = append(targets, target)
	}
	//
	insn, err := NewInstruction(gate, targets, args...)
	if err != nil {
		return []source.SyntaxError{*p.srcfile.SyntaxError(p.spanOf(start, p.index-1), err.Error())}
	}
	// Use append directly so the text is mirrored exactly.
	circuit.ops = append(circuit.ops, insn)
	//
	return nil
}

func (p *Parser) parseArgs() ([]float64, []source.SyntaxError) {
	var args []float64
	//
	p.index++
	//
	for first := true; !p.match(RBRACE); first = false {
		if !first {
			if _, errs := p.expect(COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		token, errs := p.expect(NUMBER)
		if len(errs) > 0 {
			return nil, errs
		}
		//
		value, err := strconv.ParseFloat(p.string(token), 64)
		if err != nil {
			return nil, p.syntaxErrors(token, "invalid number")
		}
		//
		args = append(args, value)
	}
	//
	return args, nil
}

func (p *Parser) parseTarget() (Target, []source.SyntaxError) {
	lookahead := p.lookahead()
	//
	if lookahead.Kind == NUMBER {
		q, errs := p.parseUnsigned()
		return QubitTarget(q), errs
	} else if p.string(lookahead) != "rec" {
		return Target{}, p.syntaxErrors(lookahead, "expected qubit or rec[-k]")
	}
	// Parse rec[-k]
	p.index++
	//
	if _, errs := p.expect(LSQUARE); len(errs) > 0 {
		return Target{}, errs
	}
	//
	token, errs := p.expect(NUMBER)
	if len(errs) > 0 {
		return Target{}, errs
	}
	//
	lookback, err := strconv.Atoi(p.string(token))
	if err != nil || lookback >= 0 {
		return Target{}, p.syntaxErrors(token, "record lookback must be a negative integer")
	} else if _, errs := p.expect(RSQUARE); len(errs) > 0 {
		return Target{}, errs
	}
	//
	return RecordTarget(uint(-lookback)), nil
}

func (p *Parser) parseUnsigned() (uint, []source.SyntaxError) {
	token, errs := p.expect(NUMBER)
	if len(errs) > 0 {
		return 0, errs
	}
	//
	value, err := strconv.ParseUint(p.string(token), 10, 32)
	if err != nil {
		return 0, p.syntaxErrors(token, "expected non-negative integer")
	}
	//
	return uint(value), nil
}

// Get the text representing the given token as a string.
func (p *Parser) string(token lex.Token) string {
	return p.srcfile.Text(token.Span)
}

func (p *Parser) lookahead() lex.Token {
	return p.tokens[min(p.index, len(p.tokens)-1)]
}

// Expect returns an error if the next token is not what was expected.
func (p *Parser) expect(kind uint) (lex.Token, []source.SyntaxError) {
	lookahead := p.lookahead()
	//
	if lookahead.Kind != kind {
		return lookahead, p.syntaxErrors(lookahead, "unexpected token")
	}
	//
	p.index++
	//
	return lookahead, nil
}

// Match attempts to match the given token.
func (p *Parser) match(kind uint) bool {
	if p.lookahead().Kind == kind {
		p.index++
		return true
	}
	//
	return false
}

// Follows checks whether one of the given token kinds is next.
func (p *Parser) follows(options ...uint) bool {
	return slices.Contains(options, p.lookahead().Kind)
}

func (p *Parser) spanOf(firstToken, lastToken int) source.Span {
	start := p.tokens[firstToken].Span.Start()
	end := p.tokens[lastToken].Span.End()
	//
	return source.NewSpan(start, end)
}

func (p *Parser) syntaxErrors(token lex.Token, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.srcfile.SyntaxError(token.Span, msg)}
}
