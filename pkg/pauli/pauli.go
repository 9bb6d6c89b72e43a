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
package pauli

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Term is a single non-identity entry of a Pauli string.
type Term struct {
	Qubit complex128
	Basis Basis
}

// String is an immutable mapping from qubits to non-identity single-qubit Pauli
// operators.  Qubits are identified by their position in the plane, written as
// a complex number.  Entries are held in qubit order (see CompareQubits), so
// two equal strings have identical representations.  The zero value is the
// empty string (i.e. the identity).
type String struct {
	terms []Term
}

// CompareQubits orders qubit positions first by real part, then by imaginary
// part.
func CompareQubits(a complex128, b complex128) int {
	if c := cmp.Compare(real(a), real(b)); c != 0 {
		return c
	}
	//
	return cmp.Compare(imag(a), imag(b))
}

// New constructs a Pauli string from a mapping of qubits to bases.  Identity
// entries are dropped.
func New(entries map[complex128]Basis) String {
	terms := make([]Term, 0, len(entries))
	//
	for _, q := range slices.SortedFunc(maps.Keys(entries), CompareQubits) {
		if b := entries[q]; b != I {
			terms = append(terms, Term{q, b})
		}
	}
	//
	return String{terms}
}

// Of constructs a Pauli string which applies the same basis to every given
// qubit.
func Of(basis Basis, qubits ...complex128) String {
	entries := make(map[complex128]Basis, len(qubits))
	for _, q := range qubits {
		entries[q] = basis
	}
	//
	return New(entries)
}

// FromTerms constructs a Pauli string from a list of terms.  Terms on the same
// qubit are multiplied together.
func FromTerms(terms ...Term) String {
	entries := make(map[complex128]Basis, len(terms))
	for _, t := range terms {
		entries[t.Qubit] ^= t.Basis
	}
	//
	return New(entries)
}

// Len returns the number of qubits with a non-identity operator.
func (p String) Len() int {
	return len(p.terms)
}

// IsEmpty checks whether this is the identity.
func (p String) IsEmpty() bool {
	return len(p.terms) == 0
}

// Terms returns the (sorted) entries of this string.  The result must not be
// modified.
func (p String) Terms() []Term {
	return p.terms
}

// Qubits returns the qubits on which this string acts, in sorted order.
func (p String) Qubits() []complex128 {
	qubits := make([]complex128, len(p.terms))
	for i, t := range p.terms {
		qubits[i] = t.Qubit
	}
	//
	return qubits
}

// Get returns the operator applied to a given qubit (I if none).
func (p String) Get(qubit complex128) Basis {
	i, ok := slices.BinarySearchFunc(p.terms, qubit, func(t Term, q complex128) int {
		return CompareQubits(t.Qubit, q)
	})
	//
	if ok {
		return p.terms[i].Basis
	}
	//
	return I
}

// Mul returns the product of two Pauli strings (ignoring phase).
func (p String) Mul(o String) String {
	var (
		terms = make([]Term, 0, len(p.terms)+len(o.terms))
		i, j  int
	)
	//
	for i < len(p.terms) && j < len(o.terms) {
		l, r := p.terms[i], o.terms[j]
		//
		switch c := CompareQubits(l.Qubit, r.Qubit); {
		case c < 0:
			terms = append(terms, l)
			i++
		case c > 0:
			terms = append(terms, r)
			j++
		default:
			if b := l.Basis ^ r.Basis; b != I {
				terms = append(terms, Term{l.Qubit, b})
			}
			//
			i++
			j++
		}
	}
	//
	terms = append(terms, p.terms[i:]...)
	terms = append(terms, o.terms[j:]...)
	//
	return String{terms}
}

// Commutes checks whether two Pauli strings commute, which holds when the
// number of qubits on which they hold different non-identity operators is even.
func (p String) Commutes(o String) bool {
	var (
		count int
		i, j  int
	)
	//
	for i < len(p.terms) && j < len(o.terms) {
		l, r := p.terms[i], o.terms[j]
		//
		switch c := CompareQubits(l.Qubit, r.Qubit); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			if !l.Basis.Commutes(r.Basis) {
				count++
			}
			//
			i++
			j++
		}
	}
	//
	return count%2 == 0
}

// Equal checks whether two Pauli strings are identical.
func (p String) Equal(o String) bool {
	return slices.Equal(p.terms, o.terms)
}

// Keep returns the restriction of this string to those qubits accepted by the
// given predicate.
func (p String) Keep(predicate func(complex128) bool) String {
	var terms []Term
	//
	for _, t := range p.terms {
		if predicate(t.Qubit) {
			terms = append(terms, t)
		}
	}
	//
	return String{terms}
}

// Without returns this string with the given qubits removed.
func (p String) Without(qubits ...complex128) String {
	return p.Keep(func(q complex128) bool {
		return !slices.Contains(qubits, q)
	})
}

// Map applies a given function to every qubit of this string, for example to
// translate a string to a different location.
func (p String) Map(fn func(complex128) complex128) String {
	terms := make([]Term, len(p.terms))
	for i, t := range p.terms {
		terms[i] = Term{fn(t.Qubit), t.Basis}
	}
	//
	return FromTerms(terms...)
}

// Key returns the canonical text of this string, which can be used as a map key.
func (p String) Key() string {
	return p.String()
}

// String returns the text form of this string, such as "X(0,0)*Z(1,0)".  The
// identity is written "1".
func (p String) String() string {
	if len(p.terms) == 0 {
		return "1"
	}
	//
	var builder strings.Builder
	//
	for i, t := range p.terms {
		if i != 0 {
			builder.WriteString("*")
		}
		//
		builder.WriteString(t.Basis.String())
		builder.WriteString("(")
		builder.WriteString(FormatQubit(t.Qubit))
		builder.WriteString(")")
	}
	//
	return builder.String()
}

// FormatQubit writes a qubit position as "re,im".
func FormatQubit(q complex128) string {
	return fmt.Sprintf("%s,%s", strconv.FormatFloat(real(q), 'g', -1, 64),
		strconv.FormatFloat(imag(q), 'g', -1, 64))
}

// Parse reads the text form produced by String.  Terms are separated by '*',
// and each term is a basis followed by a parenthesised "re,im" position.
func Parse(text string) (String, error) {
	text = strings.TrimSpace(text)
	//
	if text == "" || text == "1" {
		return String{}, nil
	}
	//
	var terms []Term
	//
	for _, item := range strings.Split(text, "*") {
		term, err := parseTerm(strings.TrimSpace(item))
		if err != nil {
			return String{}, fmt.Errorf("invalid pauli string \"%s\": %w", text, err)
		}
		//
		terms = append(terms, term)
	}
	//
	return FromTerms(terms...), nil
}

// MustParse is like Parse, but panics on malformed input.
func MustParse(text string) String {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	//
	return p
}

func parseTerm(item string) (Term, error) {
	if len(item) < 2 || item[1] != '(' || item[len(item)-1] != ')' {
		return Term{}, fmt.Errorf("malformed term \"%s\"", item)
	}
	//
	basis, err := ParseBasis(rune(item[0]))
	if err != nil {
		return Term{}, err
	}
	//
	qubit, err := ParseQubit(item[2 : len(item)-1])
	//
	return Term{qubit, basis}, err
}

// ParseQubit reads a qubit position written as "re,im" (or just "re").
func ParseQubit(text string) (complex128, error) {
	var (
		parts  = strings.Split(text, ",")
		coords [2]float64
	)
	//
	if len(parts) > 2 {
		return 0, fmt.Errorf("malformed qubit \"%s\"", text)
	}
	//
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, fmt.Errorf("malformed qubit \"%s\"", text)
		}
		//
		coords[i] = v
	}
	//
	return complex(coords[0], coords[1]), nil
}
