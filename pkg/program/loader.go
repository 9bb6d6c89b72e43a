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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/go-qflow/pkg/chunk"
	"github.com/consensys/go-qflow/pkg/circuit"
	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/pauli"
	"github.com/consensys/go-qflow/pkg/util/source"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Load reads a program file, using a decoder chosen by the extension of the
// filename, and builds the nodes it describes.
func Load(filename string) ([]chunk.Node, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	return Parse(filename, bytes)
}

// Parse decodes the contents of a program file, using a decoder chosen by the
// extension of the filename, and builds the nodes it describes.
func Parse(filename string, bytes []byte) ([]chunk.Node, error) {
	var (
		nodes []Node
		err   error
	)
	//
	switch ext := filepath.Ext(filename); ext {
	case ".json":
		err = json.Unmarshal(bytes, &nodes)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &nodes)
	default:
		err = fmt.Errorf("unknown program file format: %s", ext)
	}
	//
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	//
	result, err := Build(filename, nodes)
	if err == nil {
		log.Debugf("loaded %d node(s) from %s", len(result), filename)
	}
	//
	return result, err
}

// Build constructs the nodes described by their on-disk form.  The given name
// prefixes the location reported in any error.
func Build(name string, nodes []Node) ([]chunk.Node, error) {
	result := make([]chunk.Node, len(nodes))
	//
	for i, n := range nodes {
		var err error
		//
		if result[i], err = buildNode(fmt.Sprintf("%s[%d]", name, i), n); err != nil {
			return nil, err
		}
	}
	//
	return result, nil
}

func buildNode(path string, node Node) (chunk.Node, error) {
	switch {
	case node.Chunk != nil && node.Loop == nil && node.Reflow == nil:
		return buildChunk(path+".chunk", node.Chunk)
	case node.Loop != nil && node.Chunk == nil && node.Reflow == nil:
		return buildLoop(path+".loop", node.Loop)
	case node.Reflow != nil && node.Chunk == nil && node.Loop == nil:
		return buildReflow(path+".reflow", node.Reflow)
	}
	//
	return nil, fmt.Errorf("%s: expected exactly one of chunk, loop or reflow", path)
}

func buildChunk(path string, node *ChunkNode) (*chunk.Chunk, error) {
	var (
		srcfile  = source.NewSourceFile(path, []byte(node.Circuit))
		q2i      = make(map[complex128]uint, len(node.Qubits))
		flows    = make([]flow.Flow, len(node.Flows))
		discards [2][]flow.Port
		errs     []source.SyntaxError
		circ     *circuit.Circuit
		err      error
	)
	//
	for i, pair := range node.Qubits {
		q, err := buildPosition(pair)
		if err != nil {
			return nil, fmt.Errorf("%s.qubits[%d]: %w", path, i, err)
		} else if _, ok := q2i[q]; ok {
			return nil, fmt.Errorf("%s.qubits[%d]: duplicate qubit (%s)", path, i, pauli.FormatQubit(q))
		}
		//
		q2i[q] = uint(i)
	}
	//
	if circ, errs = circuit.ParseFile(srcfile); len(errs) > 0 {
		return nil, &CircuitError{path, errs}
	}
	//
	for i, f := range node.Flows {
		if flows[i], err = buildFlow(f); err != nil {
			return nil, fmt.Errorf("%s.flows[%d]: %w", path, i, err)
		}
	}
	//
	for i, ports := range [2][]PortNode{node.DiscardIn, node.DiscardOut} {
		if discards[i], err = buildPorts(ports); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	//
	c, err := chunk.New(circ, q2i, flows, chunk.DiscardedInputs(discards[0]...),
		chunk.DiscardedOutputs(discards[1]...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	//
	return c, nil
}

func buildLoop(path string, node *LoopNode) (*chunk.Loop, error) {
	body, err := Build(path+".body", node.Body)
	if err != nil {
		return nil, err
	}
	//
	loop, err := chunk.NewLoop(node.Repetitions, body...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	//
	return loop, nil
}

func buildReflow(path string, node *ReflowNode) (*chunk.Reflow, error) {
	outputs := make([]chunk.Output, len(node.Outputs))
	//
	for i, o := range node.Outputs {
		port, err := buildPort(PortNode{o.Pauli, o.Observable})
		if err != nil {
			return nil, fmt.Errorf("%s.outputs[%d]: %w", path, i, err)
		}
		//
		inputs, err := buildPorts(o.Inputs)
		if err != nil {
			return nil, fmt.Errorf("%s.outputs[%d]: %w", path, i, err)
		}
		//
		outputs[i] = chunk.Output{Port: port, Inputs: inputs}
	}
	//
	discards, err := buildPorts(node.Discard)
	if err != nil {
		return nil, fmt.Errorf("%s.discard: %w", path, err)
	}
	//
	reflow, err := chunk.NewReflow(outputs, discards...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	//
	return reflow, nil
}

func buildFlow(node FlowNode) (flow.Flow, error) {
	var (
		options      []flow.Option
		measurements = flow.Pending()
	)
	//
	start, err := pauli.Parse(node.Start)
	if err != nil {
		return flow.Flow{}, err
	}
	//
	end, err := pauli.Parse(node.End)
	if err != nil {
		return flow.Flow{}, err
	}
	//
	if node.Records.Explicit {
		measurements = flow.Explicit(node.Records.Indices...)
	}
	//
	if node.Observable != nil {
		options = append(options, flow.WithObservable(*node.Observable))
	}
	//
	if node.Center != nil {
		center, err := buildPosition(node.Center)
		if err != nil {
			return flow.Flow{}, fmt.Errorf("center: %w", err)
		}
		//
		options = append(options, flow.WithCenter(center))
	}
	//
	if len(node.Flags) > 0 {
		options = append(options, flow.WithFlags(node.Flags...))
	}
	//
	return flow.New(start, end, measurements, options...)
}

func buildPorts(nodes []PortNode) ([]flow.Port, error) {
	ports := make([]flow.Port, len(nodes))
	//
	for i, n := range nodes {
		var err error
		if ports[i], err = buildPort(n); err != nil {
			return nil, err
		}
	}
	//
	return ports, nil
}

func buildPort(node PortNode) (flow.Port, error) {
	p, err := pauli.Parse(node.Pauli)
	if err != nil {
		return flow.Port{}, err
	} else if p.IsEmpty() {
		return flow.Port{}, errors.New("port must touch at least one qubit")
	}
	//
	port := flow.Port{Pauli: p, Observable: flow.NoObservable}
	//
	if node.Observable != nil {
		port.Observable = flow.ObservableIndex(*node.Observable)
	}
	//
	return port, nil
}

func buildPosition(pair []float64) (complex128, error) {
	if len(pair) != 2 {
		return 0, fmt.Errorf("expected [x, y] pair, found %d coordinate(s)", len(pair))
	}
	//
	return complex(pair[0], pair[1]), nil
}
