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
package set

import (
	"cmp"
	"slices"
	"sort"
)

// SortedSet is an array of unique elements held in ascending order.  Besides
// union, it supports symmetric difference, which is how parities of measurement
// records are combined.
type SortedSet[T cmp.Ordered] []T

// NewSortedSet returns a sorted set holding the given elements, with duplicate
// elements removed.
func NewSortedSet[T cmp.Ordered](elements ...T) *SortedSet[T] {
	items := slices.Clone(elements)
	slices.Sort(items)
	items = slices.Compact(items)
	set := SortedSet[T](items)
	//
	return &set
}

// Clone returns a copy of this set which does not alias it.
func (p *SortedSet[T]) Clone() *SortedSet[T] {
	set := slices.Clone(*p)
	return &set
}

// Contains returns true if a given element is in the set.
func (p *SortedSet[T]) Contains(element T) bool {
	i := p.search(element)
	return i < len(*p) && (*p)[i] == element
}

// Insert an element into this sorted set.
func (p *SortedSet[T]) Insert(element T) {
	data := *p
	i := p.search(element)
	// Check whether item existed or not.
	if i >= len(data) || data[i] != element {
		*p = slices.Insert(data, i, element)
	}
}

// Toggle inserts an element which is not present, or removes one which is.
func (p *SortedSet[T]) Toggle(element T) {
	data := *p
	i := p.search(element)
	//
	if i < len(data) && data[i] == element {
		*p = slices.Delete(data, i, i+1)
	} else {
		*p = slices.Insert(data, i, element)
	}
}

// InsertSorted inserts all elements in a given sorted set into this set.
func (p *SortedSet[T]) InsertSorted(q *SortedSet[T]) {
	var (
		left, right = *p, *q
		ndata       = make([]T, 0, len(left)+len(right))
		i, j        int
	)
	//
	for i < len(left) && j < len(right) {
		switch {
		case left[i] < right[j]:
			ndata = append(ndata, left[i])
			i++
		case left[i] > right[j]:
			ndata = append(ndata, right[j])
			j++
		default:
			ndata = append(ndata, left[i])
			i++
			j++
		}
	}
	// Handle anything left
	ndata = append(ndata, left[i:]...)
	ndata = append(ndata, right[j:]...)
	*p = ndata
}

// SymmetricDifference updates this set to hold exactly those elements in one of
// the two sets but not both.
func (p *SortedSet[T]) SymmetricDifference(q *SortedSet[T]) {
	var (
		left, right = *p, *q
		ndata       = make([]T, 0, len(left)+len(right))
		i, j        int
	)
	//
	for i < len(left) && j < len(right) {
		switch {
		case left[i] < right[j]:
			ndata = append(ndata, left[i])
			i++
		case left[i] > right[j]:
			ndata = append(ndata, right[j])
			j++
		default:
			// cancels out
			i++
			j++
		}
	}
	//
	ndata = append(ndata, left[i:]...)
	ndata = append(ndata, right[j:]...)
	*p = ndata
}

// Equal checks whether two sets hold exactly the same elements.
func (p *SortedSet[T]) Equal(q *SortedSet[T]) bool {
	return slices.Equal(*p, *q)
}

// Determine index where element either does occur, or should occur.
func (p *SortedSet[T]) search(element T) int {
	data := *p
	//
	return sort.Search(len(data), func(i int) bool {
		return element <= data[i]
	})
}
