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
	"errors"
	"fmt"
)

// Node is an element of a program tree: a *Chunk, a *Loop or a *Reflow.
type Node interface {
	// StartInterface returns the ports consumed at the start of this node.
	StartInterface() (*Interface, error)
	// EndInterface returns the ports produced at the end of this node.
	EndInterface() (*Interface, error)
	// Verify checks this node is internally consistent.
	Verify() error
}

// Loop is a sequence of nodes executed a fixed number of times.
type Loop struct {
	body        []Node
	repetitions uint
}

// NewLoop constructs a loop from a non-empty body.
func NewLoop(repetitions uint, body ...Node) (*Loop, error) {
	if len(body) == 0 {
		return nil, errEmptyLoop
	}
	//
	return &Loop{body, repetitions}, nil
}

// Body returns the nodes making up a single iteration of this loop.
func (p *Loop) Body() []Node {
	return p.body
}

// Repetitions returns the number of times this loop executes.
func (p *Loop) Repetitions() uint {
	return p.repetitions
}

// StartInterface returns the start interface of the first node of the body.
func (p *Loop) StartInterface() (*Interface, error) {
	return p.body[0].StartInterface()
}

// EndInterface returns the end interface of the last node of the body.
func (p *Loop) EndInterface() (*Interface, error) {
	return p.body[len(p.body)-1].EndInterface()
}

// Verify checks every node of the body, and that the body can follow itself
// when the loop executes more than once.
func (p *Loop) Verify() error {
	for _, node := range p.body {
		if err := node.Verify(); err != nil {
			return err
		}
	}
	//
	if p.repetitions < 2 {
		return nil
	}
	//
	start, err := p.StartInterface()
	if err != nil {
		return err
	}
	//
	end, err := p.EndInterface()
	if err != nil {
		return err
	}
	//
	for _, port := range end.Ports() {
		if !start.Has(port) && !start.Discarded(port) {
			return fmt.Errorf("loop produces %s which the next iteration does not consume", port)
		}
	}
	//
	for _, port := range start.Ports() {
		if !end.Has(port) && !end.Discarded(port) {
			return fmt.Errorf("loop consumes %s which the previous iteration does not produce", port)
		}
	}
	//
	return nil
}

// Flattened returns the body of this loop repeated once for each iteration.
func (p *Loop) Flattened() []Node {
	var nodes []Node
	//
	for i := uint(0); i < p.repetitions; i++ {
		nodes = append(nodes, p.body...)
	}
	//
	return nodes
}

var errEmptyLoop = errors.New("loop body cannot be empty")
