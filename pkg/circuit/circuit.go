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
	"strings"
)

// Operation is an element of a circuit: either an Instruction or a *Repeat
// block.
type Operation interface {
	// NumMeasurements returns the number of measurement records produced by this
	// operation.
	NumMeasurements() uint
	// Equal checks whether this operation is identical to another.
	Equal(Operation) bool
}

// Repeat is a block of operations executed a fixed number of times.
type Repeat struct {
	Count uint
	Body  *Circuit
}

// NumMeasurements returns the number of records produced by all repetitions.
func (p *Repeat) NumMeasurements() uint {
	return p.Count * p.Body.NumMeasurements()
}

// Equal implementation for the Operation interface.
func (p *Repeat) Equal(o Operation) bool {
	if r, ok := o.(*Repeat); ok {
		return r.Count == p.Count && r.Body.Equal(p.Body)
	}
	//
	return false
}

// Circuit is an ordered sequence of instructions and repeat blocks, mirroring
// the textual circuit format.
type Circuit struct {
	ops []Operation
}

// NewCircuit constructs a circuit from a sequence of operations.  Adjacent
// instructions are fused where possible.
func NewCircuit(ops ...Operation) *Circuit {
	c := &Circuit{}
	//
	for _, op := range ops {
		c.AppendOp(op)
	}
	//
	return c
}

// Operations returns the operations making up this circuit.  The result must
// not be modified.
func (p *Circuit) Operations() []Operation {
	return p.ops
}

// Len returns the number of top-level operations.
func (p *Circuit) Len() int {
	return len(p.ops)
}

// Clone returns a shallow copy of this circuit which can be extended without
// affecting the original.
func (p *Circuit) Clone() *Circuit {
	ops := make([]Operation, len(p.ops))
	copy(ops, p.ops)
	//
	return &Circuit{ops}
}

// Append a gate applied to some targets, fusing it with the previous
// instruction when that applies the same gate with the same arguments.
func (p *Circuit) Append(name string, targets []Target, args ...float64) error {
	gate, err := Lookup(name)
	if err != nil {
		return err
	}
	//
	insn, err := NewInstruction(gate, targets, args...)
	if err != nil {
		return err
	}
	//
	p.AppendOp(insn)
	//
	return nil
}

// AppendOp appends an operation, fusing instructions where possible.
func (p *Circuit) AppendOp(op Operation) {
	if insn, ok := op.(Instruction); ok && len(p.ops) > 0 {
		if last, ok := p.ops[len(p.ops)-1].(Instruction); ok && last.canFuse(insn) {
			targets := make([]Target, 0, len(last.Targets)+len(insn.Targets))
			targets = append(targets, last.Targets...)
			targets = append(targets, insn.Targets...)
			p.ops[len(p.ops)-1] = Instruction{last.Gate, targets, last.Args}
			//
			return
		}
	}
	//
	p.ops = append(p.ops, op)
}

// AppendRepeat appends a repeat block.  A zero count appends nothing, and a
// count of one appends the body directly.
func (p *Circuit) AppendRepeat(count uint, body *Circuit) {
	switch {
	case count == 0 || body.Len() == 0:
		return
	case count == 1:
		p.Extend(body)
	default:
		p.ops = append(p.ops, &Repeat{count, body})
	}
}

// Extend appends all operations of another circuit onto this one.
func (p *Circuit) Extend(other *Circuit) {
	for _, op := range other.ops {
		p.AppendOp(op)
	}
}

// NumMeasurements returns the number of measurement records produced when
// executing this circuit (accounting for repetitions).
func (p *Circuit) NumMeasurements() uint {
	var n uint
	for _, op := range p.ops {
		n += op.NumMeasurements()
	}
	//
	return n
}

// NumQubits returns one more than the largest qubit index used.
func (p *Circuit) NumQubits() uint {
	var n uint
	//
	p.Walk(func(insn Instruction) {
		for _, t := range insn.Targets {
			if !t.record {
				n = max(n, t.value+1)
			}
		}
	})
	//
	return n
}

// Walk visits every instruction in execution order, expanding repeat blocks.
func (p *Circuit) Walk(fn func(Instruction)) {
	for _, op := range p.ops {
		switch op := op.(type) {
		case Instruction:
			fn(op)
		case *Repeat:
			for i := uint(0); i < op.Count; i++ {
				op.Body.Walk(fn)
			}
		}
	}
}

// Flattened returns the instructions of this circuit in execution order, with
// all repeat blocks expanded.
func (p *Circuit) Flattened() []Instruction {
	var insns []Instruction
	//
	p.Walk(func(insn Instruction) {
		insns = append(insns, insn)
	})
	//
	return insns
}

// WithoutAnnotations returns a copy of this circuit with annotations (other
// than TICK) removed.  Repeat blocks are kept.
func (p *Circuit) WithoutAnnotations() *Circuit {
	c := &Circuit{}
	//
	for _, op := range p.ops {
		switch op := op.(type) {
		case Instruction:
			if op.Gate.Kind != ANNOTATION || op.Gate.Name == "TICK" {
				c.AppendOp(op)
			}
		case *Repeat:
			c.AppendRepeat(op.Count, op.Body.WithoutAnnotations())
		}
	}
	//
	return c
}

// Remapped returns a copy of this circuit with every qubit target renumbered
// according to a given function.  Measurement records are unaffected.
func (p *Circuit) Remapped(fn func(uint) uint) *Circuit {
	c := &Circuit{}
	//
	for _, op := range p.ops {
		switch op := op.(type) {
		case Instruction:
			targets := make([]Target, len(op.Targets))
			//
			for i, t := range op.Targets {
				if t.record {
					targets[i] = t
				} else {
					targets[i] = QubitTarget(fn(t.value))
				}
			}
			//
			c.ops = append(c.ops, Instruction{op.Gate, targets, op.Args})
		case *Repeat:
			c.ops = append(c.ops, &Repeat{op.Count, op.Body.Remapped(fn)})
		}
	}
	//
	return c
}

// Equal checks whether two circuits have identical operations.
func (p *Circuit) Equal(o *Circuit) bool {
	if len(p.ops) != len(o.ops) {
		return false
	}
	//
	for i, op := range p.ops {
		if !op.Equal(o.ops[i]) {
			return false
		}
	}
	//
	return true
}

func (p *Circuit) String() string {
	var builder strings.Builder
	//
	p.write(&builder, "")
	//
	return builder.String()
}

func (p *Circuit) write(builder *strings.Builder, indent string) {
	for _, op := range p.ops {
		switch op := op.(type) {
		case Instruction:
			builder.WriteString(indent)
			builder.WriteString(op.String())
			builder.WriteString("\n")
		case *Repeat:
			builder.WriteString(fmt.Sprintf("%sREPEAT %d {\n", indent, op.Count))
			op.Body.write(builder, indent+"    ")
			builder.WriteString(indent)
			builder.WriteString("}\n")
		}
	}
}
