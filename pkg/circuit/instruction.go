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
	"strconv"
	"strings"
)

// Target is an operand of an instruction: either a qubit index, or a reference
// rec[-k] to the kth most recent measurement record.
type Target struct {
	value  uint
	record bool
}

// QubitTarget constructs a target referring to a qubit index.
func QubitTarget(q uint) Target {
	return Target{q, false}
}

// RecordTarget constructs a target referring to rec[-lookback].
func RecordTarget(lookback uint) Target {
	if lookback == 0 {
		panic("record lookback must be positive")
	}
	//
	return Target{lookback, true}
}

// QubitTargets constructs qubit targets for a list of qubit indices.
func QubitTargets(qubits ...uint) []Target {
	targets := make([]Target, len(qubits))
	for i, q := range qubits {
		targets[i] = QubitTarget(q)
	}
	//
	return targets
}

// IsRecord checks whether this target is a measurement record reference.
func (t Target) IsRecord() bool {
	return t.record
}

// Qubit returns the qubit index of a qubit target.
func (t Target) Qubit() uint {
	if t.record {
		panic("target is a measurement record")
	}
	//
	return t.value
}

// Lookback returns k for a target rec[-k].
func (t Target) Lookback() uint {
	if !t.record {
		panic("target is a qubit")
	}
	//
	return t.value
}

func (t Target) String() string {
	if t.record {
		return fmt.Sprintf("rec[-%d]", t.value)
	}
	//
	return strconv.FormatUint(uint64(t.value), 10)
}

// Instruction is a single gate applied to zero or more targets, with optional
// numeric arguments (e.g. detector coordinates).
type Instruction struct {
	Gate    *Gate
	Targets []Target
	Args    []float64
}

// NewInstruction constructs an instruction, checking its targets are consistent
// with the gate.
func NewInstruction(gate *Gate, targets []Target, args ...float64) (Instruction, error) {
	insn := Instruction{gate, targets, args}
	//
	return insn, insn.Validate()
}

// MustInstruction is like NewInstruction, but panics on malformed instructions.
func MustInstruction(name string, targets []Target, args ...float64) Instruction {
	insn, err := NewInstruction(MustLookup(name), targets, args...)
	if err != nil {
		panic(err)
	}
	//
	return insn
}

// Validate checks the targets of this instruction are consistent with its gate.
func (p Instruction) Validate() error {
	g := p.Gate
	//
	switch g.Kind {
	case ANNOTATION:
		return p.validateAnnotation()
	case UNITARY:
		if uint(len(p.Targets))%g.Arity != 0 {
			return fmt.Errorf("%s requires targets in groups of %d", g.Name, g.Arity)
		}
		//
		for i, t := range p.Targets {
			if t.record && (g.Arity != 2 || g.feedback[1-i%2] == 0) {
				return fmt.Errorf("%s does not accept a measurement record at position %d", g.Name, i)
			} else if t.record && p.Targets[i^1].record {
				return fmt.Errorf("%s cannot apply to two measurement records", g.Name)
			} else if g.Arity == 2 && i%2 == 0 && !t.record && p.Targets[i+1] == t {
				return fmt.Errorf("%s cannot target qubit %d twice", g.Name, t.value)
			}
		}
	default:
		for _, t := range p.Targets {
			if t.record {
				return fmt.Errorf("%s does not accept measurement records", g.Name)
			}
		}
	}
	//
	return nil
}

func (p Instruction) validateAnnotation() error {
	for _, t := range p.Targets {
		switch p.Gate.Name {
		case "DETECTOR", "OBSERVABLE_INCLUDE":
			if !t.record {
				return fmt.Errorf("%s only accepts measurement records", p.Gate.Name)
			}
		case "QUBIT_COORDS":
			if t.record {
				return fmt.Errorf("%s only accepts qubits", p.Gate.Name)
			}
		default:
			return fmt.Errorf("%s does not accept targets", p.Gate.Name)
		}
	}
	//
	return nil
}

// NumMeasurements returns the number of measurement records this instruction
// produces.
func (p Instruction) NumMeasurements() uint {
	if p.Gate.IsMeasurement() {
		return uint(len(p.Targets))
	}
	//
	return 0
}

// Groups splits the targets of this instruction into the groups on which the
// gate acts in turn.  Annotations have a single group.
func (p Instruction) Groups() [][]Target {
	if p.Gate.Arity <= 1 {
		if p.Gate.Arity == 0 {
			return [][]Target{p.Targets}
		}
		//
		groups := make([][]Target, len(p.Targets))
		for i := range p.Targets {
			groups[i] = p.Targets[i : i+1]
		}
		//
		return groups
	}
	//
	var groups [][]Target
	for i := 0; i+int(p.Gate.Arity) <= len(p.Targets); i += int(p.Gate.Arity) {
		groups = append(groups, p.Targets[i:i+int(p.Gate.Arity)])
	}
	//
	return groups
}

// Equal checks whether this instruction is identical to a given operation.
func (p Instruction) Equal(o Operation) bool {
	if r, ok := o.(Instruction); ok {
		return p.Gate == r.Gate && slices.Equal(p.Targets, r.Targets) && slices.Equal(p.Args, r.Args)
	}
	//
	return false
}

// canFuse checks whether a following instruction can be merged into this one
// without changing the meaning of the circuit.
func (p Instruction) canFuse(o Instruction) bool {
	return p.Gate == o.Gate && p.Gate.Kind != ANNOTATION && slices.Equal(p.Args, o.Args)
}

func (p Instruction) String() string {
	var builder strings.Builder
	//
	builder.WriteString(p.Gate.Name)
	//
	if len(p.Args) > 0 {
		builder.WriteString("(")
		//
		for i, a := range p.Args {
			if i != 0 {
				builder.WriteString(", ")
			}
			//
			builder.WriteString(strconv.FormatFloat(a, 'g', -1, 64))
		}
		//
		builder.WriteString(")")
	}
	//
	for _, t := range p.Targets {
		builder.WriteString(" ")
		builder.WriteString(t.String())
	}
	//
	return builder.String()
}
