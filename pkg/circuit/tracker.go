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
	"fmt"
	"slices"
)

// Tracker resolves symbolic measurement keys to sequential record indices as
// measurements are appended to a circuit.
type Tracker[K comparable] struct {
	indices map[K]int
	count   int
}

// NewTracker constructs an empty measurement tracker.
func NewTracker[K comparable]() *Tracker[K] {
	return &Tracker[K]{make(map[K]int), 0}
}

// Record allocates the next record index to each key in turn.  Reusing a key is
// an error, in which case nothing is recorded.
func (p *Tracker[K]) Record(keys ...K) error {
	for i, k := range keys {
		if _, ok := p.indices[k]; ok {
			return fmt.Errorf("measurement key %v already recorded", k)
		} else if slices.Contains(keys[:i], k) {
			return fmt.Errorf("measurement key %v given twice", k)
		}
	}
	//
	for _, k := range keys {
		p.indices[k] = p.count
		p.count++
	}
	//
	return nil
}

// Skip allocates n record indices which have no key (e.g. measurements whose
// results are never referenced).
func (p *Tracker[K]) Skip(n int) {
	p.count += n
}

// Count returns the number of record indices allocated so far.
func (p *Tracker[K]) Count() int {
	return p.count
}

// Lookup resolves each key to its record index.
func (p *Tracker[K]) Lookup(keys ...K) ([]int, error) {
	indices := make([]int, len(keys))
	//
	for i, k := range keys {
		index, ok := p.indices[k]
		if !ok {
			return nil, fmt.Errorf("unknown measurement key %v", k)
		}
		//
		indices[i] = index
	}
	//
	return indices, nil
}
