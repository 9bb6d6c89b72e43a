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
	"testing"

	"github.com/consensys/go-qflow/pkg/chunk"
	"github.com/consensys/go-qflow/pkg/compiler"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const memoryYaml = `
- chunk:
    qubits: [[0, 0], [1, 0]]
    circuit: R 0 1
    flows:
      - end: Z(0,0)*Z(1,0)
        records: []
- loop:
    repetitions: 5
    body:
      - chunk:
          qubits: [[0, 0], [1, 0], [2, 0]]
          circuit: |
            R 2
            CX 0 2 1 2
            M 2
          flows:
            - start: Z(0,0)*Z(1,0)
            - end: Z(0,0)*Z(1,0)
              records: auto
- chunk:
    qubits: [[0, 0], [1, 0]]
    circuit: M 0 1
    flows:
      - start: Z(0,0)*Z(1,0)
        records: [0, 1]
`

const memoryJson = `[
  {"chunk": {"qubits": [[0, 0], [1, 0]], "circuit": "R 0 1",
             "flows": [{"end": "Z(0,0)*Z(1,0)", "records": []}]}},
  {"loop": {"repetitions": 5, "body": [
    {"chunk": {"qubits": [[0, 0], [1, 0], [2, 0]], "circuit": "R 2\nCX 0 2 1 2\nM 2",
               "flows": [{"start": "Z(0,0)*Z(1,0)", "records": [0]},
                         {"end": "Z(0,0)*Z(1,0)", "records": "auto"}]}}]}},
  {"chunk": {"qubits": [[0, 0], [1, 0]], "circuit": "M 0 1",
             "flows": [{"start": "Z(0,0)*Z(1,0)", "records": [0, 1]}]}}
]`

func Test_Program_00(t *testing.T) {
	nodes, err := Parse("memory.yaml", []byte(memoryYaml))
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	//
	loop, ok := nodes[1].(*chunk.Loop)
	require.True(t, ok)
	require.Equal(t, uint(5), loop.Repetitions())
	// Records were solved for
	round := loop.Body()[0].(*chunk.Chunk)
	for _, f := range round.Flows() {
		require.Equal(t, []int{0}, f.Measurements().Indices())
	}
	//
	for _, n := range nodes {
		require.NoError(t, n.Verify())
	}
}

func Test_Program_01(t *testing.T) {
	// The same program in either format compiles identically
	fromYaml, err := Parse("memory.yml", []byte(memoryYaml))
	require.NoError(t, err)
	//
	fromJson, err := Parse("memory.json", []byte(memoryJson))
	require.NoError(t, err)
	//
	left, err := compiler.Compile(fromYaml)
	require.NoError(t, err)
	//
	right, err := compiler.Compile(fromJson)
	require.NoError(t, err)
	//
	require.Equal(t, left.String(), right.String())
	require.Contains(t, left.String(), "REPEAT 4 {")
}

func Test_Program_02(t *testing.T) {
	text := `
- chunk:
    qubits: [[0, 0], [1, 0]]
    circuit: H 0
    flows:
      - start: X(0,0)
        end: Z(0,0)
        records: []
        flags: [boundary]
- reflow:
    outputs:
      - pauli: Z(0,0)
        observable: 1
        inputs: [{pauli: Z(0,0)}]
    discard: [{pauli: X(1,0)}]
`
	nodes, err := Parse("reflow.yaml", []byte(text))
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	//
	c := nodes[0].(*chunk.Chunk)
	require.True(t, c.Flows()[0].HasFlag("boundary"))
	//
	r := nodes[1].(*chunk.Reflow)
	require.Len(t, r.Outputs(), 1)
	require.Len(t, r.Discards(), 1)
	//
	index, ok := r.Outputs()[0].Port.Observable.Index()
	require.True(t, ok)
	require.Equal(t, uint(1), index)
}

func Test_Program_03(t *testing.T) {
	// Syntax errors in circuits are reported against the enclosing node
	text := `[{"chunk": {"qubits": [[0, 0]], "circuit": "H 0\nFOO 0", "flows": []}}]`
	//
	_, err := Parse("bad.json", []byte(text))
	//
	var circuitErr *CircuitError
	require.True(t, errors.As(err, &circuitErr))
	require.Equal(t, "bad.json[0].chunk", circuitErr.Path)
	require.NotEmpty(t, circuitErr.Errors)
	require.Equal(t, "bad.json[0].chunk", circuitErr.Errors[0].SourceFile().Filename())
}

func Test_Program_04(t *testing.T) {
	check_Invalid(t, "prog.txt", `[]`, "unknown program file format")
	check_Invalid(t, "prog.json", `[{}]`, "expected exactly one of")
	check_Invalid(t, "prog.json", `[{"chunk": {"qubits": [[0]], "circuit": ""}}]`, "qubits[0]")
	check_Invalid(t, "prog.json", `[{"chunk": {"qubits": [[0, 0], [0, 0]], "circuit": ""}}]`, "duplicate qubit")
	check_Invalid(t, "prog.yaml", "- chunk: {qubits: [[0, 0]], circuit: H 0, flows: [{start: 'X(0,0)', records: some}]}",
		"unknown records keyword")
	check_Invalid(t, "prog.yaml", "- loop: {repetitions: 2, body: []}", "loop body cannot be empty")
	check_Invalid(t, "prog.yaml", "- reflow: {outputs: [{pauli: '', inputs: []}]}", "outputs[0]")
}

func Test_Program_05(t *testing.T) {
	// A null record list is solved for, in either format
	jsonText := `[{"chunk": {"qubits": [[0, 0]], "circuit": "M 0", "flows": [{"start": "Z(0,0)", "records": null}]}}]`
	yamlText := "- chunk: {qubits: [[0, 0]], circuit: M 0, flows: [{start: 'Z(0,0)', records: null}]}"
	//
	for _, input := range []struct{ filename, text string }{{"null.json", jsonText}, {"null.yaml", yamlText}} {
		nodes, err := Parse(input.filename, []byte(input.text))
		require.NoError(t, err, input.filename)
		//
		c := nodes[0].(*chunk.Chunk)
		require.Equal(t, []int{0}, c.Flows()[0].Measurements().Indices(), input.filename)
	}
}

func Test_Program_06(t *testing.T) {
	check_RoundTrip(t, Records{})
	check_RoundTrip(t, Records{Explicit: true, Indices: []int{}})
	check_RoundTrip(t, Records{Explicit: true, Indices: []int{0, 2}})
	// Explicit records always encode as a list
	bytes, err := json.Marshal(FlowNode{Records: Records{Explicit: true}})
	require.NoError(t, err)
	require.Contains(t, string(bytes), `"records":[]`)
}

func check_Invalid(t *testing.T, filename string, text string, fragment string) {
	_, err := Parse(filename, []byte(text))
	require.Error(t, err)
	require.Contains(t, err.Error(), fragment)
}

type recordsHolder struct {
	Records Records `json:"records" yaml:"records"`
}

func check_RoundTrip(t *testing.T, records Records) {
	t.Helper()
	//
	var fromJson, fromYaml recordsHolder
	//
	bytes, err := json.Marshal(recordsHolder{records})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(bytes, &fromJson))
	require.Equal(t, records, fromJson.Records, string(bytes))
	//
	bytes, err = yaml.Marshal(recordsHolder{records})
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(bytes, &fromYaml))
	require.Equal(t, records, fromYaml.Records, string(bytes))
}
