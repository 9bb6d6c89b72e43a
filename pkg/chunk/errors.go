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
	"strings"

	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/pauli"
)

// PortCollisionError indicates two flows (or a flow and a discard) share the
// same port on one boundary of a node.
type PortCollisionError struct {
	// The port in question
	Port flow.Port
	// Flows using that port (empty for a port both used and discarded).
	Flows []flow.Flow
}

// Message provides a suitable error message
func (p *PortCollisionError) Message() string {
	if len(p.Flows) < 2 {
		return fmt.Sprintf("port %s is both used and discarded", p.Port)
	}
	//
	return fmt.Sprintf("port %s is shared by flows %s and %s", p.Port, p.Flows[0], p.Flows[1])
}

func (p *PortCollisionError) Error() string {
	return p.Message()
}

// MissingFlowInputError indicates a flow requires a port which the preceding
// node does not provide.
type MissingFlowInputError struct {
	// The flow in question
	Flow flow.Flow
	// Ports which were available
	Available []flow.Port
}

// Message provides a suitable error message
func (p *MissingFlowInputError) Message() string {
	return fmt.Sprintf("missing input %s for flow %s (available %s)", p.Flow.StartPort(), p.Flow,
		portList(p.Available))
}

func (p *MissingFlowInputError) Error() string {
	return p.Message()
}

// UnusedFlowOutputError indicates a flow produces a port which no following
// node consumes (or discards).
type UnusedFlowOutputError struct {
	// The flow in question
	Flow flow.Flow
}

// Message provides a suitable error message
func (p *UnusedFlowOutputError) Message() string {
	return fmt.Sprintf("unused output %s of flow %s", p.Flow.EndPort(), p.Flow)
}

func (p *UnusedFlowOutputError) Error() string {
	return p.Message()
}

// ReflowMismatchError indicates an output of a reflow is not the product of its
// declared inputs.
type ReflowMismatchError struct {
	// The declared output
	Output flow.Port
	// Declared inputs
	Inputs []flow.Port
	// Output multiplied by the product of inputs.
	Difference pauli.String
}

// Message provides a suitable error message
func (p *ReflowMismatchError) Message() string {
	return fmt.Sprintf("reflow output %s is not the product of %s (difference %s)", p.Output, portList(p.Inputs),
		p.Difference)
}

func (p *ReflowMismatchError) Error() string {
	return p.Message()
}

func portList(ports []flow.Port) string {
	items := make([]string, len(ports))
	for i, port := range ports {
		items[i] = port.String()
	}
	//
	return "[" + strings.Join(items, ", ") + "]"
}
