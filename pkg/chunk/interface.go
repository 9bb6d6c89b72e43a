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
	"cmp"
	"slices"

	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/pauli"
)

// Interface is the set of ports exposed on one boundary of a node, along with
// the ports explicitly discarded on that boundary.  Ports are held in a
// canonical order.
type Interface struct {
	ports    []flow.Port
	discards []flow.Port
}

// NewInterface constructs an interface, failing with a *PortCollisionError if
// a port occurs more than once (or is both used and discarded).
func NewInterface(ports []flow.Port, discards []flow.Port) (*Interface, error) {
	return newInterface(ports, discards, nil)
}

// newInterface constructs an interface, optionally using the flows which
// produced each port when reporting collisions.
func newInterface(ports []flow.Port, discards []flow.Port, flows []flow.Flow) (*Interface, error) {
	seen := make(map[flow.PortKey]int, len(ports))
	//
	for i, port := range ports {
		if j, ok := seen[port.Key()]; ok {
			var colliding []flow.Flow
			if flows != nil {
				colliding = []flow.Flow{flows[j], flows[i]}
			}
			//
			return nil, &PortCollisionError{port, colliding}
		}
		//
		seen[port.Key()] = i
	}
	//
	for _, port := range discards {
		if _, ok := seen[port.Key()]; ok {
			return nil, &PortCollisionError{port, nil}
		}
	}
	//
	return &Interface{sortedPorts(ports), sortedPorts(dedup(discards))}, nil
}

// Ports returns the (non-discarded) ports of this interface.  The result must
// not be modified.
func (p *Interface) Ports() []flow.Port {
	return p.ports
}

// Discards returns the discarded ports of this interface.  The result must not
// be modified.
func (p *Interface) Discards() []flow.Port {
	return p.discards
}

// Has checks whether this interface exposes a given port.
func (p *Interface) Has(port flow.Port) bool {
	_, ok := slices.BinarySearchFunc(p.ports, port, comparePorts)
	return ok
}

// Discarded checks whether this interface discards a given port.
func (p *Interface) Discarded(port flow.Port) bool {
	_, ok := slices.BinarySearchFunc(p.discards, port, comparePorts)
	return ok
}

// Without returns this interface with any ports matching a given predicate
// removed.
func (p *Interface) Without(predicate func(flow.Port) bool) *Interface {
	var ports []flow.Port
	//
	for _, port := range p.ports {
		if !predicate(port) {
			ports = append(ports, port)
		}
	}
	//
	return &Interface{ports, p.discards}
}

// Qubits returns the positions of all qubits touched by this interface, in
// sorted order.
func (p *Interface) Qubits() []complex128 {
	var qubits []complex128
	//
	for _, port := range slices.Concat(p.ports, p.discards) {
		qubits = append(qubits, port.Pauli.Qubits()...)
	}
	//
	slices.SortFunc(qubits, pauli.CompareQubits)
	//
	return slices.Compact(qubits)
}

// ToChunk constructs a chunk with no instructions, which carries every port of
// this interface through unchanged and discards its discarded ports.
func (p *Interface) ToChunk() *Chunk {
	var (
		qubits = p.Qubits()
		q2i    = make(map[complex128]uint, len(qubits))
		flows  = make([]flow.Flow, len(p.ports))
	)
	//
	for i, q := range qubits {
		q2i[q] = uint(i)
	}
	//
	for i, port := range p.ports {
		flows[i] = flow.MustNew(port.Pauli, port.Pauli, flow.Explicit()).WithObservable(port.Observable)
	}
	//
	c, err := New(nil, q2i, flows, DiscardedInputs(p.discards...), DiscardedOutputs(p.discards...))
	if err != nil {
		// Cannot happen, since an interface has no collisions.
		panic(err)
	}
	//
	return c
}

// Equal checks whether two interfaces expose the same ports and discards.
func (p *Interface) Equal(o *Interface) bool {
	return slices.EqualFunc(p.ports, o.ports, flow.Port.Equal) &&
		slices.EqualFunc(p.discards, o.discards, flow.Port.Equal)
}

func (p *Interface) String() string {
	return portList(p.ports) + " discarding " + portList(p.discards)
}

func comparePorts(a flow.Port, b flow.Port) int {
	if c := cmp.Compare(a.Pauli.Key(), b.Pauli.Key()); c != 0 {
		return c
	}
	//
	ai, aok := a.Observable.Index()
	bi, bok := b.Observable.Index()
	//
	if aok != bok {
		if aok {
			return 1
		}
		//
		return -1
	}
	//
	return cmp.Compare(ai, bi)
}

func sortedPorts(ports []flow.Port) []flow.Port {
	ports = slices.Clone(ports)
	slices.SortFunc(ports, comparePorts)
	//
	return ports
}

func dedup(ports []flow.Port) []flow.Port {
	var (
		seen   = make(map[flow.PortKey]bool)
		unique []flow.Port
	)
	//
	for _, port := range ports {
		if !seen[port.Key()] {
			seen[port.Key()] = true
			unique = append(unique, port)
		}
	}
	//
	return unique
}
