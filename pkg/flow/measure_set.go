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
package flow

import (
	"fmt"
	"strings"

	"github.com/consensys/go-qflow/pkg/util/collection/set"
)

// MeasureSet is the set of measurement records a flow depends on.  It is either
// an explicit set of record indices, combined by parity (i.e. an index given
// twice cancels out), or pending: to be solved from the circuit.
type MeasureSet struct {
	indices set.SortedSet[int]
	pending bool
}

// Explicit constructs an explicit set of records.  Indices occurring an even
// number of times cancel out.
func Explicit(indices ...int) MeasureSet {
	var s set.SortedSet[int]
	//
	for _, i := range indices {
		s.Toggle(i)
	}
	//
	return MeasureSet{s, false}
}

// Pending constructs a set of records which has yet to be solved for.
func Pending() MeasureSet {
	return MeasureSet{nil, true}
}

// IsPending checks whether this set has yet to be solved for.
func (p MeasureSet) IsPending() bool {
	return p.pending
}

// Indices returns the record indices in ascending order.  The result must not
// be modified.
func (p MeasureSet) Indices() []int {
	p.mustBeExplicit()
	return p.indices
}

// Len returns the number of records in this set.
func (p MeasureSet) Len() int {
	return len(p.indices)
}

// IsEmpty checks whether this is an explicit set with no records.
func (p MeasureSet) IsEmpty() bool {
	return !p.pending && len(p.indices) == 0
}

// Min returns the smallest record index, or false if there are none.
func (p MeasureSet) Min() (int, bool) {
	if len(p.indices) == 0 {
		return 0, false
	}
	//
	return p.indices[0], true
}

// Contains checks whether a given record is in this set.
func (p MeasureSet) Contains(index int) bool {
	return p.indices.Contains(index)
}

// Xor returns the parity of two explicit sets.
func (p MeasureSet) Xor(o MeasureSet) MeasureSet {
	p.mustBeExplicit()
	o.mustBeExplicit()
	//
	indices := p.indices.Clone()
	indices.SymmetricDifference(&o.indices)
	//
	return MeasureSet{*indices, false}
}

// Shift returns this set with offset added to every index.
func (p MeasureSet) Shift(offset int) MeasureSet {
	p.mustBeExplicit()
	//
	indices := make(set.SortedSet[int], len(p.indices))
	for i, v := range p.indices {
		indices[i] = v + offset
	}
	//
	return MeasureSet{indices, false}
}

// Map returns the parity of the images of each index under a given function.
// Indices mapped to a negative value are dropped.
func (p MeasureSet) Map(fn func(int) int) MeasureSet {
	p.mustBeExplicit()
	//
	var indices set.SortedSet[int]
	//
	for _, v := range p.indices {
		if w := fn(v); w >= 0 {
			indices.Toggle(w)
		}
	}
	//
	return MeasureSet{indices, false}
}

// Equal checks whether two sets are identical.
func (p MeasureSet) Equal(o MeasureSet) bool {
	return p.pending == o.pending && p.indices.Equal(&o.indices)
}

func (p MeasureSet) String() string {
	if p.pending {
		return "auto"
	}
	//
	items := make([]string, len(p.indices))
	for i, v := range p.indices {
		items[i] = fmt.Sprintf("%d", v)
	}
	//
	return "[" + strings.Join(items, ", ") + "]"
}

func (p MeasureSet) mustBeExplicit() {
	if p.pending {
		panic("measurement set has not been solved")
	}
}
