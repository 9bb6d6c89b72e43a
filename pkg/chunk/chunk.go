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
package chunk

import (
	"fmt"
	"maps"
	"slices"

	"github.com/consensys/go-qflow/pkg/circuit"
	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/pauli"
	"github.com/consensys/go-qflow/pkg/stabilizer"
	"github.com/consensys/go-qflow/pkg/verify"
	log "github.com/sirupsen/logrus"
)

// POSTSELECT is the flag carried by flows whose detectors are postselected
// rather than required to be deterministic.
const POSTSELECT = "postselect"

// Chunk is a fragment of circuit together with the flows it implements, and
// any ports it explicitly discards on either boundary.  Chunks are immutable.
type Chunk struct {
	circuit      *circuit.Circuit
	q2i          map[complex128]uint
	flows        []flow.Flow
	discardedIn  []flow.Port
	discardedOut []flow.Port
}

// Option customises a chunk under construction.
type Option func(*Chunk)

// DiscardedInputs declares ports which the chunk discards at its start.
func DiscardedInputs(ports ...flow.Port) Option {
	return func(c *Chunk) {
		c.discardedIn = append(c.discardedIn, ports...)
	}
}

// DiscardedOutputs declares ports which the chunk discards at its end.
func DiscardedOutputs(ports ...flow.Port) Option {
	return func(c *Chunk) {
		c.discardedOut = append(c.discardedOut, ports...)
	}
}

// New constructs a chunk from a circuit, a map from qubit positions to the
// circuit's qubit indices, and a set of flows.  Flows with pending
// measurements are solved against the circuit.  This fails if any flow touches
// a qubit without an index, or if two flows share a port on either boundary.
// The flows are not verified.
func New(circ *circuit.Circuit, q2i map[complex128]uint, flows []flow.Flow, options ...Option) (*Chunk, error) {
	if circ == nil {
		circ = circuit.NewCircuit()
	}
	//
	c := &Chunk{circ, maps.Clone(q2i), slices.Clone(flows), nil, nil}
	//
	for _, opt := range options {
		opt(c)
	}
	//
	if err := c.resolvePending(); err != nil {
		return nil, err
	}
	//
	return c.validate()
}

// resolvePending solves the measurements of any flow which has yet to be
// solved for.
func (p *Chunk) resolvePending() error {
	var tableau *stabilizer.Tableau
	//
	for i, f := range p.flows {
		if !f.Measurements().IsPending() {
			continue
		} else if tableau == nil {
			var err error
			//
			if tableau, err = stabilizer.NewTableau(p.circuit, p.q2i); err != nil {
				return err
			}
		}
		//
		ms, err := tableau.Solve(f.Start(), f.End())
		if err != nil {
			return err
		}
		//
		p.flows[i] = f.WithMeasurements(ms)
	}
	//
	return nil
}

// validate checks qubits are known and ports do not collide.
func (p *Chunk) validate() (*Chunk, error) {
	for _, f := range p.flows {
		for _, str := range []pauli.String{f.Start(), f.End()} {
			for _, q := range str.Qubits() {
				if _, ok := p.q2i[q]; !ok {
					return nil, fmt.Errorf("flow %s touches qubit %s which has no index", f, pauli.FormatQubit(q))
				}
			}
		}
	}
	//
	if err := p.validateCircuit(); err != nil {
		return nil, err
	} else if _, err := p.StartInterface(); err != nil {
		return nil, err
	} else if _, err := p.EndInterface(); err != nil {
		return nil, err
	}
	//
	return p, nil
}

// validateCircuit checks every qubit index used by the circuit has a position.
func (p *Chunk) validateCircuit() error {
	var (
		indices = make(map[uint]bool, len(p.q2i))
		missing = -1
	)
	//
	for _, i := range p.q2i {
		indices[i] = true
	}
	//
	p.circuit.Walk(func(insn circuit.Instruction) {
		for _, t := range insn.Targets {
			if !t.IsRecord() && !indices[t.Qubit()] && missing < 0 {
				missing = int(t.Qubit())
			}
		}
	})
	//
	if missing >= 0 {
		return fmt.Errorf("qubit %d has no position", missing)
	}
	//
	return nil
}

// Circuit returns the instructions of this chunk.
func (p *Chunk) Circuit() *circuit.Circuit {
	return p.circuit
}

// QubitIndices returns the map from qubit positions to circuit indices.  The
// result must not be modified.
func (p *Chunk) QubitIndices() map[complex128]uint {
	return p.q2i
}

// Qubits returns the positions of all qubits of this chunk, in index order.
func (p *Chunk) Qubits() []complex128 {
	qubits := slices.Collect(maps.Keys(p.q2i))
	slices.SortFunc(qubits, func(a, b complex128) int {
		return int(p.q2i[a]) - int(p.q2i[b])
	})
	//
	return qubits
}

// Flows returns the flows of this chunk.  The result must not be modified.
func (p *Chunk) Flows() []flow.Flow {
	return p.flows
}

// DiscardedInputs returns the ports discarded at the start of this chunk.
func (p *Chunk) DiscardedInputs() []flow.Port {
	return p.discardedIn
}

// DiscardedOutputs returns the ports discarded at the end of this chunk.
func (p *Chunk) DiscardedOutputs() []flow.Port {
	return p.discardedOut
}

// NumMeasurements returns the number of measurement records produced by this
// chunk.
func (p *Chunk) NumMeasurements() uint {
	return p.circuit.NumMeasurements()
}

// StartInterface returns the ports consumed at the start of this chunk.
func (p *Chunk) StartInterface() (*Interface, error) {
	var (
		ports []flow.Port
		flows []flow.Flow
	)
	//
	for _, f := range p.flows {
		if !f.Start().IsEmpty() {
			ports = append(ports, f.StartPort())
			flows = append(flows, f)
		}
	}
	//
	return newInterface(ports, p.discardedIn, flows)
}

// EndInterface returns the ports produced at the end of this chunk.
func (p *Chunk) EndInterface() (*Interface, error) {
	var (
		ports []flow.Port
		flows []flow.Flow
	)
	//
	for _, f := range p.flows {
		if !f.End().IsEmpty() {
			ports = append(ports, f.EndPort())
			flows = append(flows, f)
		}
	}
	//
	return newInterface(ports, p.discardedOut, flows)
}

// Verify checks the circuit of this chunk implements its flows.
func (p *Chunk) Verify() error {
	_, err := p.VerifyWith(verify.Options{})
	return err
}

// VerifyWith checks the circuit of this chunk implements its flows, returning
// the verifier's report.
func (p *Chunk) VerifyWith(options verify.Options) (*verify.Report, error) {
	log.Debugf("verifying chunk with %d flows over %d qubits", len(p.flows), len(p.q2i))
	//
	return verify.Verify(p.circuit, p.q2i, p.flows, options)
}

// Then composes this chunk with a following chunk.  Flows ending in this chunk
// are matched by port with flows starting in the next, and concatenated.
// Ports discarded on one side absorb matching flows from the other.  Qubits of
// both chunks are renumbered into a shared index space.
func (p *Chunk) Then(next *Chunk) (*Chunk, error) {
	var (
		q2i    = mergeQubits(p.q2i, next.q2i)
		offset = int(p.NumMeasurements())
		ends   = make(map[flow.PortKey]int)
		used   = make(map[flow.PortKey]bool)
		flows  []flow.Flow
	)
	//
	circ := p.circuit.Remapped(remapping(p.q2i, q2i))
	circ.Extend(next.circuit.Remapped(remapping(next.q2i, q2i)))
	//
	for i, f := range p.flows {
		if f.End().IsEmpty() {
			flows = append(flows, f)
		} else {
			ends[f.EndPort().Key()] = i
		}
	}
	//
	for _, f := range next.flows {
		f = f.Shifted(offset)
		//
		if f.Start().IsEmpty() {
			flows = append(flows, f)
			continue
		}
		//
		key := f.StartPort().Key()
		//
		if i, ok := ends[key]; ok {
			g, err := p.flows[i].Then(f)
			if err != nil {
				return nil, err
			}
			//
			used[key] = true
			flows = append(flows, g)
		} else if !slices.ContainsFunc(p.discardedOut, f.StartPort().Equal) {
			iface, _ := p.EndInterface()
			return nil, &MissingFlowInputError{f, iface.Ports()}
		}
	}
	//
	for _, f := range p.flows {
		if f.End().IsEmpty() || used[f.EndPort().Key()] {
			continue
		} else if !slices.ContainsFunc(next.discardedIn, f.EndPort().Equal) {
			return nil, &UnusedFlowOutputError{f}
		}
	}
	//
	c := &Chunk{circ, q2i, flows, slices.Clone(p.discardedIn), slices.Clone(next.discardedOut)}
	//
	return c.validate()
}

// WithPostselection returns this chunk with every flow matching a given
// predicate flagged for postselection.
func (p *Chunk) WithPostselection(predicate func(flow.Flow) bool) *Chunk {
	return p.mapFlows(func(f flow.Flow) flow.Flow {
		if predicate(f) {
			return f.WithFlags(POSTSELECT)
		}
		//
		return f
	})
}

// WithFlagAdded returns this chunk with a given flag added to every flow.
func (p *Chunk) WithFlagAdded(flag string) *Chunk {
	return p.mapFlows(func(f flow.Flow) flow.Flow {
		return f.WithFlags(flag)
	})
}

// WithObservablesAsDetectors returns this chunk with the observable tag removed
// from every flow, such that they are compiled into detectors.  This fails if
// doing so would cause ports to collide.
func (p *Chunk) WithObservablesAsDetectors() (*Chunk, error) {
	c := p.mapFlows(func(f flow.Flow) flow.Flow {
		return f.WithObservable(flow.NoObservable)
	})
	//
	return c.validate()
}

// WithoutFlows returns this chunk with every flow matching a given predicate
// removed.
func (p *Chunk) WithoutFlows(predicate func(flow.Flow) bool) *Chunk {
	c := p.mapFlows(func(f flow.Flow) flow.Flow { return f })
	c.flows = slices.DeleteFunc(c.flows, predicate)
	//
	return c
}

func (p *Chunk) mapFlows(fn func(flow.Flow) flow.Flow) *Chunk {
	flows := make([]flow.Flow, len(p.flows))
	for i, f := range p.flows {
		flows[i] = fn(f)
	}
	//
	return &Chunk{p.circuit, p.q2i, flows, p.discardedIn, p.discardedOut}
}

// mergeQubits assigns an index to every qubit of either map, in sorted position
// order.
func mergeQubits(left map[complex128]uint, right map[complex128]uint) map[complex128]uint {
	var (
		qubits = slices.Concat(slices.Collect(maps.Keys(left)), slices.Collect(maps.Keys(right)))
		q2i    = make(map[complex128]uint)
	)
	//
	slices.SortFunc(qubits, pauli.CompareQubits)
	//
	for _, q := range slices.Compact(qubits) {
		q2i[q] = uint(len(q2i))
	}
	//
	return q2i
}

// remapping converts indices of one qubit map into those of another.
func remapping(from map[complex128]uint, to map[complex128]uint) func(uint) uint {
	table := make(map[uint]uint, len(from))
	for q, i := range from {
		table[i] = to[q]
	}
	//
	return func(i uint) uint {
		return table[i]
	}
}
