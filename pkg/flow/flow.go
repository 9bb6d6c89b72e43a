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
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/consensys/go-qflow/pkg/pauli"
)

// Observable optionally tags a flow as contributing to a logical observable.
// The zero value means "no observable".
type Observable struct {
	index uint
	valid bool
}

// NoObservable is the absence of an observable tag.
var NoObservable = Observable{}

// ObservableIndex tags a flow with a given logical observable.
func ObservableIndex(index uint) Observable {
	return Observable{index, true}
}

// Index returns the observable index, or false if there is none.
func (p Observable) Index() (uint, bool) {
	return p.index, p.valid
}

// IsSet checks whether this is a genuine observable tag.
func (p Observable) IsSet() bool {
	return p.valid
}

func (p Observable) String() string {
	if !p.valid {
		return "none"
	}
	//
	return fmt.Sprintf("%d", p.index)
}

// Flow is a declarative contract for a circuit fragment: the start operator,
// if it holds before the fragment executes, is transformed into the end
// operator, with the parity of the given measurement records accounting for any
// sign change.  An empty start (or end) means the flow begins (or finishes)
// within the fragment.  Flows are immutable.
type Flow struct {
	start        pauli.String
	end          pauli.String
	measurements MeasureSet
	observable   Observable
	center       complex128
	flags        []string
}

// Option customises a flow under construction.
type Option func(*Flow)

// WithObservable tags a flow with a logical observable.
func WithObservable(index uint) Option {
	return func(f *Flow) {
		f.observable = ObservableIndex(index)
	}
}

// WithCenter sets the position used when reporting (or annotating) the flow.
func WithCenter(center complex128) Option {
	return func(f *Flow) {
		f.center = center
	}
}

// WithFlags adds zero or more opaque flags.
func WithFlags(flags ...string) Option {
	return func(f *Flow) {
		f.flags = unionFlags(f.flags, flags)
	}
}

// New constructs a flow, checking it is well-formed.  Unless a center is given,
// it defaults to the mean position of the qubits involved.
func New(start, end pauli.String, measurements MeasureSet, options ...Option) (Flow, error) {
	f := Flow{start: start, end: end, measurements: measurements}
	f.center = defaultCenter(start, end)
	//
	for _, opt := range options {
		opt(&f)
	}
	//
	if measurements.IsPending() && start.IsEmpty() && end.IsEmpty() {
		return Flow{}, errors.New("flow with pending measurements must touch at least one qubit")
	} else if i, ok := measurements.Min(); ok && i < 0 {
		return Flow{}, fmt.Errorf("flow has negative measurement index %d", i)
	}
	//
	return f, nil
}

// MustNew is like New, but panics for malformed flows.
func MustNew(start, end pauli.String, measurements MeasureSet, options ...Option) Flow {
	f, err := New(start, end, measurements, options...)
	if err != nil {
		panic(err)
	}
	//
	return f
}

// Start returns the operator consumed at the start of the fragment.
func (p Flow) Start() pauli.String {
	return p.start
}

// End returns the operator produced at the end of the fragment.
func (p Flow) End() pauli.String {
	return p.end
}

// Measurements returns the records on which this flow depends.
func (p Flow) Measurements() MeasureSet {
	return p.measurements
}

// Observable returns the observable tag of this flow.
func (p Flow) Observable() Observable {
	return p.observable
}

// Center returns the position associated with this flow.
func (p Flow) Center() complex128 {
	return p.center
}

// Flags returns the flags of this flow, in sorted order.
func (p Flow) Flags() []string {
	return slices.Clone(p.flags)
}

// HasFlag checks whether this flow carries a given flag.
func (p Flow) HasFlag(flag string) bool {
	_, ok := slices.BinarySearch(p.flags, flag)
	return ok
}

// StartPort returns the port at which this flow enters a fragment.
func (p Flow) StartPort() Port {
	return Port{p.start, p.observable}
}

// EndPort returns the port at which this flow leaves a fragment.
func (p Flow) EndPort() Port {
	return Port{p.end, p.observable}
}

// Then concatenates this flow with a flow through a following fragment, whose
// start must match this flow's end.  Measurements are combined by parity and
// flags are unioned.  The center of the later flow is kept.
func (p Flow) Then(next Flow) (Flow, error) {
	if !p.end.Equal(next.start) || p.observable != next.observable {
		return Flow{}, fmt.Errorf("cannot concatenate flow ending %s with flow starting %s", p.EndPort(), next.StartPort())
	}
	//
	return Flow{
		start:        p.start,
		end:          next.end,
		measurements: p.measurements.Xor(next.measurements),
		observable:   p.observable,
		center:       next.center,
		flags:        unionFlags(p.flags, next.flags),
	}, nil
}

// Reversed swaps the start and end of this flow.
func (p Flow) Reversed() Flow {
	p.start, p.end = p.end, p.start
	return p
}

// WithMeasurements returns this flow with a different set of records.
func (p Flow) WithMeasurements(measurements MeasureSet) Flow {
	p.measurements = measurements
	return p
}

// WithStart returns this flow with a different start operator.
func (p Flow) WithStart(start pauli.String) Flow {
	p.start = start
	return p
}

// WithEnd returns this flow with a different end operator.
func (p Flow) WithEnd(end pauli.String) Flow {
	p.end = end
	return p
}

// WithObservable returns this flow with a different observable tag.
func (p Flow) WithObservable(observable Observable) Flow {
	p.observable = observable
	return p
}

// WithFlags returns this flow with some additional flags.
func (p Flow) WithFlags(flags ...string) Flow {
	p.flags = unionFlags(p.flags, flags)
	return p
}

// Shifted returns this flow with offset added to every record index.
func (p Flow) Shifted(offset int) Flow {
	p.measurements = p.measurements.Shift(offset)
	return p
}

// Equal checks whether two flows are identical.
func (p Flow) Equal(o Flow) bool {
	return p.start.Equal(o.start) && p.end.Equal(o.end) && p.measurements.Equal(o.measurements) &&
		p.observable == o.observable && p.center == o.center && slices.Equal(p.flags, o.flags)
}

func (p Flow) String() string {
	var builder strings.Builder
	//
	builder.WriteString(p.start.String())
	builder.WriteString(" -> ")
	builder.WriteString(p.end.String())
	builder.WriteString(" xor rec")
	builder.WriteString(p.measurements.String())
	//
	if p.observable.IsSet() {
		builder.WriteString(fmt.Sprintf(" (obs %s)", p.observable))
	}
	//
	if len(p.flags) > 0 {
		builder.WriteString(fmt.Sprintf(" {%s}", strings.Join(p.flags, ",")))
	}
	//
	return builder.String()
}

func defaultCenter(start, end pauli.String) complex128 {
	var (
		sum   complex128
		count int
	)
	//
	seen := make(map[complex128]bool)
	for _, p := range []pauli.String{start, end} {
		for _, q := range p.Qubits() {
			if !seen[q] {
				seen[q] = true
				sum += q
				count++
			}
		}
	}
	//
	if count == 0 {
		return 0
	}
	//
	return sum / complex(float64(count), 0)
}

func unionFlags(left []string, right []string) []string {
	flags := slices.Concat(left, right)
	slices.Sort(flags)
	//
	return slices.Compact(flags)
}
