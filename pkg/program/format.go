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
package program

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// AUTO is the keyword used in place of a record list to request that the
// records of a flow be solved from its circuit.
const AUTO = "auto"

// Node is the on-disk form of a single program node.  Exactly one of its
// fields should be set.
type Node struct {
	Chunk  *ChunkNode  `json:"chunk,omitempty" yaml:"chunk,omitempty"`
	Loop   *LoopNode   `json:"loop,omitempty" yaml:"loop,omitempty"`
	Reflow *ReflowNode `json:"reflow,omitempty" yaml:"reflow,omitempty"`
}

// ChunkNode describes a circuit fragment together with the flows it
// implements.  Qubits are listed as [x, y] positions, where the position of a
// qubit in this list determines its index within the circuit.
type ChunkNode struct {
	Qubits     [][]float64 `json:"qubits" yaml:"qubits"`
	Circuit    string      `json:"circuit" yaml:"circuit"`
	Flows      []FlowNode  `json:"flows" yaml:"flows"`
	DiscardIn  []PortNode  `json:"discard_in,omitempty" yaml:"discard_in,omitempty"`
	DiscardOut []PortNode  `json:"discard_out,omitempty" yaml:"discard_out,omitempty"`
}

// LoopNode repeats a sequence of nodes.
type LoopNode struct {
	Repetitions uint   `json:"repetitions" yaml:"repetitions"`
	Body        []Node `json:"body" yaml:"body"`
}

// ReflowNode re-expresses ports as products of other ports.
type ReflowNode struct {
	Outputs []OutputNode `json:"outputs" yaml:"outputs"`
	Discard []PortNode   `json:"discard,omitempty" yaml:"discard,omitempty"`
}

// FlowNode describes a single flow.  Pauli strings use the textual form (e.g.
// "X(0,0)*Z(1,0)"), with an empty string denoting the identity.
type FlowNode struct {
	Start      string    `json:"start,omitempty" yaml:"start,omitempty"`
	End        string    `json:"end,omitempty" yaml:"end,omitempty"`
	Records    Records   `json:"records" yaml:"records"`
	Observable *uint     `json:"observable,omitempty" yaml:"observable,omitempty"`
	Center     []float64 `json:"center,omitempty" yaml:"center,omitempty"`
	Flags      []string  `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// PortNode describes a port, optionally tagged with an observable.
type PortNode struct {
	Pauli      string `json:"pauli" yaml:"pauli"`
	Observable *uint  `json:"observable,omitempty" yaml:"observable,omitempty"`
}

// OutputNode describes one output of a reflow.
type OutputNode struct {
	Pauli      string     `json:"pauli" yaml:"pauli"`
	Observable *uint      `json:"observable,omitempty" yaml:"observable,omitempty"`
	Inputs     []PortNode `json:"inputs" yaml:"inputs"`
}

// Records is either an explicit list of record indices, or the keyword "auto".
// When omitted altogether, records are solved for.
type Records struct {
	Explicit bool
	Indices  []int
}

// MarshalJSON implements json.Marshaler.
func (p Records) MarshalJSON() ([]byte, error) {
	if !p.Explicit {
		return json.Marshal(AUTO)
	}
	//
	return json.Marshal(p.indices())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Records) UnmarshalJSON(bytes []byte) error {
	var keyword string
	//
	if strings.TrimSpace(string(bytes)) == "null" {
		return p.setKeyword(AUTO)
	} else if err := json.Unmarshal(bytes, &keyword); err == nil {
		return p.setKeyword(keyword)
	}
	//
	p.Explicit = true
	//
	return json.Unmarshal(bytes, &p.Indices)
}

// MarshalYAML implements yaml.Marshaler.
func (p Records) MarshalYAML() (any, error) {
	if !p.Explicit {
		return AUTO, nil
	}
	//
	return p.indices(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Records) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return p.setKeyword(AUTO)
	} else if node.Kind == yaml.ScalarNode {
		return p.setKeyword(node.Value)
	}
	//
	p.Explicit = true
	//
	return node.Decode(&p.Indices)
}

func (p *Records) setKeyword(keyword string) error {
	if keyword != AUTO {
		return fmt.Errorf("unknown records keyword \"%s\" (expected \"%s\" or a list)", keyword, AUTO)
	}
	//
	p.Explicit = false
	p.Indices = nil
	//
	return nil
}

func (p Records) indices() []int {
	if p.Indices == nil {
		return []int{}
	}
	//
	return p.Indices
}
