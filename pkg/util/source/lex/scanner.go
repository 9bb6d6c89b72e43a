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

// Scanner is a function which accepts some number of leading characters, and
// returns how many were accepted (zero meaning no match).
type Scanner func(items []rune) uint

// Or combines zero or more scanners such that the first to succeed wins.
func Or(scanners ...Scanner) Scanner {
	return func(items []rune) uint {
		for _, scanner := range scanners {
			if n := scanner(items); n > 0 {
				return n
			}
		}
		// fail
		return 0
	}
}

// Unit accepts a given sequence of characters, in order.
func Unit(chars ...rune) Scanner {
	return func(items []rune) uint {
		if len(items) < len(chars) {
			return 0
		}
		//
		for i, c := range chars {
			if items[i] != c {
				return 0
			}
		}
		//
		return uint(len(chars))
	}
}

// Within accepts any character within a given (inclusive) range.
func Within(lowest rune, highest rune) Scanner {
	return func(items []rune) uint {
		if len(items) != 0 && lowest <= items[0] && items[0] <= highest {
			return 1
		}
		// fail
		return 0
	}
}

// Many matches zero or more occurrences of a given scanner.
func Many(acceptor Scanner) Scanner {
	return func(items []rune) uint {
		index := uint(0)
		//
		for index < uint(len(items)) {
			n := acceptor(items[index:])
			if n == 0 {
				break
			}
			//
			index += n
		}
		//
		return index
	}
}

// Until matches everything up to (but not including) a given character.
func Until(item rune) Scanner {
	return func(items []rune) uint {
		index := uint(0)
		//
		for index < uint(len(items)) && items[index] != item {
			index++
		}
		//
		return index
	}
}

// Eof matches the end of the input.
func Eof() Scanner {
	return func(items []rune) uint {
		if len(items) == 0 {
			return 1
		}
		//
		return 0
	}
}

// Digits accepts one or more decimal digits.
var Digits = Many(Within('0', '9'))

// Identifier accepts a letter or underscore followed by any number of letters,
// digits or underscores.
var Identifier Scanner = func(items []rune) uint {
	start := Or(Unit('_'), Within('a', 'z'), Within('A', 'Z'))
	rest := Many(Or(Unit('_'), Within('a', 'z'), Within('A', 'Z'), Within('0', '9')))
	//
	if start(items) == 0 {
		return 0
	}
	//
	return 1 + rest(items[1:])
}

// Number accepts a decimal number with an optional leading minus sign, an
// optional fractional part and an optional exponent (e.g. "-1.5e3").
func Number(items []rune) uint {
	var n uint
	//
	if len(items) > 0 && items[0] == '-' {
		n++
	}
	//
	digits := Digits(items[n:])
	if digits == 0 {
		return 0
	}
	//
	n += digits
	// fractional part
	if n < uint(len(items)) && items[n] == '.' {
		if m := Digits(items[n+1:]); m > 0 {
			n += 1 + m
		}
	}
	// exponent
	if n < uint(len(items)) && (items[n] == 'e' || items[n] == 'E') {
		m := n + 1
		if m < uint(len(items)) && (items[m] == '-' || items[m] == '+') {
			m++
		}
		//
		if d := Digits(items[m:]); d > 0 {
			n = m + d
		}
	}
	//
	return n
}
