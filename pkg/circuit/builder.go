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
	"maps"
	"slices"

	"github.com/consensys/go-qflow/pkg/pauli"
)

// MeasurementKey identifies a measurement made by a Builder, by the qubit
// measured and a caller-chosen layer (e.g. a round number or a name).
type MeasurementKey struct {
	Qubit complex128
	Layer any
}

// Builder assembles a circuit over qubit positions rather than qubit indices,
// keeping track of which record each measurement produced.
type Builder struct {
	circuit *Circuit
	q2i     map[complex128]uint
	tracker *Tracker[MeasurementKey]
}

// NewBuilder constructs a builder for a given set of qubits.  Indices are
// allocated in qubit order (see pauli.CompareQubits).
func NewBuilder(qubits ...complex128) *Builder {
	var (
		q2i    = make(map[complex128]uint)
		sorted = slices.Clone(qubits)
	)
	//
	slices.SortFunc(sorted, pauli.CompareQubits)
	//
	for _, q := range sorted {
		if _, ok := q2i[q]; !ok {
			q2i[q] = uint(len(q2i))
		}
	}
	//
	return &Builder{&Circuit{}, q2i, NewTracker[MeasurementKey]()}
}

// Gate appends a unitary or reset gate applied to the given qubits.
func (b *Builder) Gate(name string, qubits ...complex128) error {
	gate, err := Lookup(name)
	if err != nil {
		return err
	} else if gate.IsMeasurement() {
		return fmt.Errorf("use Measure for %s", name)
	}
	//
	targets, err := b.targets(qubits)
	if err != nil {
		return err
	}
	//
	return b.circuit.Append(name, targets)
}

// Measure appends a measurement of the given qubits, recording each result
// under the key (qubit, layer).
func (b *Builder) Measure(name string, layer any, qubits ...complex128) error {
	gate, err := Lookup(name)
	if err != nil {
		return err
	} else if !gate.IsMeasurement() {
		return fmt.Errorf("%s is not a measurement", name)
	}
	//
	targets, err := b.targets(qubits)
	if err != nil {
		return err
	}
	//
	keys := make([]MeasurementKey, len(qubits))
	for i, q := range qubits {
		keys[i] = MeasurementKey{q, layer}
	}
	//
	if err := b.tracker.Record(keys...); err != nil {
		return err
	}
	//
	return b.circuit.Append(name, targets)
}

// Tick appends a TICK.
func (b *Builder) Tick() {
	b.circuit.AppendOp(MustInstruction("TICK", nil))
}

// Lookup returns the record indices of measurements of the given qubits made in
// a given layer.
func (b *Builder) Lookup(layer any, qubits ...complex128) ([]int, error) {
	keys := make([]MeasurementKey, len(qubits))
	for i, q := range qubits {
		keys[i] = MeasurementKey{q, layer}
	}
	//
	return b.tracker.Lookup(keys...)
}

// Circuit returns the circuit built so far.
func (b *Builder) Circuit() *Circuit {
	return b.circuit.Clone()
}

// QubitIndices returns the mapping from qubit positions to qubit indices.
func (b *Builder) QubitIndices() map[complex128]uint {
	return maps.Clone(b.q2i)
}

func (b *Builder) targets(qubits []complex128) ([]Target, error) {
	targets := make([]Target, len(qubits))
	//
	for i, q := range qubits {
		index, ok := b.q2i[q]
		if !ok {
			return nil, fmt.Errorf("unknown qubit (%s)", pauli.FormatQubit(q))
		}
		//
		targets[i] = QubitTarget(index)
	}
	//
	return targets, nil
}
