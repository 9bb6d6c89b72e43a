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

	"github.com/consensys/go-qflow/pkg/pauli"
)

// Kind classifies how a gate interacts with Pauli operators flowing through it.
type Kind uint8

// UNITARY gates conjugate Pauli operators according to a fixed rule.
const UNITARY Kind = 0

// MEASURE gates record the value of a single-qubit Pauli operator.
const MEASURE Kind = 1

// RESET gates prepare a qubit in the +1 eigenstate of a single-qubit Pauli.
const RESET Kind = 2

// MEASURE_RESET gates measure then reset a qubit in the same basis.
const MEASURE_RESET Kind = 3

// ANNOTATION gates have no effect on the quantum state (e.g. TICK or DETECTOR).
const ANNOTATION Kind = 4

// Gate describes one row of the gate table.  Unitary gates carry the image of
// each Pauli generator of their target group under conjugation; generator 2q
// is X on the qth target and generator 2q+1 is Z on the qth target.  Images
// are encoded the same way, as bitmasks.  Phases are not tracked.
type Gate struct {
	// Canonical mnemonic
	Name string
	// Kind of gate
	Kind Kind
	// Number of qubit targets consumed per application (zero for annotations).
	Arity uint
	// Measurement or reset basis (MEASURE, RESET, MEASURE_RESET only).
	Basis pauli.Basis
	// Mnemonic of the inverse gate (for unitaries).
	Inverse string
	// Images of generators under conjugation (unitaries only).
	images []uint8
	// Pauli applied to the qubit operand when the other operand of a pair is a
	// measurement record.  An identity entry means a record is not permitted in
	// that position.
	feedback [2]pauli.Basis
}

// Image returns the image under conjugation of a given Pauli product over the
// target group, encoded as a bitmask.
func (g *Gate) Image(input uint8) uint8 {
	var output uint8
	//
	for i, img := range g.images {
		if input&(1<<i) != 0 {
			output ^= img
		}
	}
	//
	return output
}

// Generators returns the number of Pauli generators for a target group of this
// gate.
func (g *Gate) Generators() uint {
	return 2 * g.Arity
}

// IsMeasurement checks whether this gate produces measurement records.
func (g *Gate) IsMeasurement() bool {
	return g.Kind == MEASURE || g.Kind == MEASURE_RESET
}

// IsReset checks whether this gate resets its targets.
func (g *Gate) IsReset() bool {
	return g.Kind == RESET || g.Kind == MEASURE_RESET
}

// Feedback returns the Pauli applied to operand i of a pair when the other
// operand is a measurement record.
func (g *Gate) Feedback(i uint) pauli.Basis {
	return g.feedback[i]
}

func (g *Gate) String() string {
	return g.Name
}

// Lookup finds the gate with a given mnemonic (or alias).
func Lookup(name string) (*Gate, error) {
	if g, ok := gateTable[name]; ok {
		return g, nil
	}
	//
	return nil, fmt.Errorf("unknown gate \"%s\"", name)
}

// MustLookup is like Lookup, but panics for unknown gates.
func MustLookup(name string) *Gate {
	g, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	//
	return g
}

// Gates returns the canonical rows of the gate table (i.e. without aliases), in
// table order.
func Gates() []*Gate {
	gates := make([]*Gate, len(gateOrder))
	for i, name := range gateOrder {
		gates[i] = gateTable[name]
	}
	//
	return gates
}
