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
	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/pauli"
)

// Output is a port produced by a reflow, defined as the product of some input
// ports.
type Output struct {
	Port   flow.Port
	Inputs []flow.Port
}

// Reflow re-expresses a set of ports as products of another set of ports,
// without any instructions.  Ports which are not needed can be discarded.
type Reflow struct {
	outputs  []Output
	discards []flow.Port
}

// NewReflow constructs a reflow, checking its outputs do not collide.  The
// products are not verified.
func NewReflow(outputs []Output, discards ...flow.Port) (*Reflow, error) {
	r := &Reflow{outputs, discards}
	//
	if _, err := r.StartInterface(); err != nil {
		return nil, err
	} else if _, err := r.EndInterface(); err != nil {
		return nil, err
	}
	//
	return r, nil
}

// Identity constructs the reflow which maps every port of an interface to
// itself, and discards whatever the interface discards.
func Identity(iface *Interface) *Reflow {
	outputs := make([]Output, len(iface.Ports()))
	for i, port := range iface.Ports() {
		outputs[i] = Output{port, []flow.Port{port}}
	}
	//
	return &Reflow{outputs, iface.Discards()}
}

// Outputs returns the outputs of this reflow.  The result must not be modified.
func (p *Reflow) Outputs() []Output {
	return p.outputs
}

// Discards returns the ports discarded by this reflow.
func (p *Reflow) Discards() []flow.Port {
	return p.discards
}

// StartInterface returns every port used as an input, along with the discards.
func (p *Reflow) StartInterface() (*Interface, error) {
	var ports []flow.Port
	//
	for _, out := range p.outputs {
		ports = append(ports, out.Inputs...)
	}
	//
	return NewInterface(dedup(ports), p.discards)
}

// EndInterface returns every output port.
func (p *Reflow) EndInterface() (*Interface, error) {
	ports := make([]flow.Port, len(p.outputs))
	for i, out := range p.outputs {
		ports[i] = out.Port
	}
	//
	return NewInterface(ports, nil)
}

// Verify checks every output is the product of its inputs.
func (p *Reflow) Verify() error {
	for _, out := range p.outputs {
		product := pauli.String{}
		//
		for _, in := range out.Inputs {
			product = product.Mul(in.Pauli)
		}
		//
		if !product.Equal(out.Port.Pauli) {
			return &ReflowMismatchError{out.Port, out.Inputs, product.Mul(out.Port.Pauli)}
		}
	}
	//
	return nil
}
