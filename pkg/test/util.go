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
package test

import (
	"fmt"
	"os"
	"testing"

	"github.com/consensys/go-qflow/pkg/chunk"
	"github.com/consensys/go-qflow/pkg/compiler"
	"github.com/consensys/go-qflow/pkg/program"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the program files and the corresponding compiled circuits are found.
const TestDir = "../../testdata"

// PROGRAM_EXTENSIONS lists the extensions tried, in order, when looking for
// the program file of a given test.
var PROGRAM_EXTENSIONS = []string{"yaml", "yml", "json"}

// Check that a valid program loads, that all of its nodes verify, that every
// chunk can be time-reversed into a chunk which also verifies, and that the
// program compiles to the expected circuit.
func Check(t *testing.T, test string) {
	var (
		filename = findProgramFile(t, test)
		expected = fmt.Sprintf("%s/%s.out", TestDir, test)
	)
	// Enable testing each program in parallel
	t.Parallel()
	//
	nodes, err := program.Load(filename)
	require.NoError(t, err)
	//
	for i, node := range nodes {
		require.NoError(t, node.Verify(), "%s[%d]", filename, i)
	}
	//
	checkReversed(t, filename, nodes)
	//
	circ, err := compiler.Compile(nodes)
	require.NoError(t, err)
	//
	bytes, err := os.ReadFile(expected)
	require.NoError(t, err)
	//
	if diff := cmp.Diff(string(bytes), circ.String()); diff != "" {
		t.Errorf("%s: unexpected circuit (-want +got):\n%s", filename, diff)
	}
}

// CheckInvalid checks that an invalid program is rejected, whether when
// loading, verifying or compiling it.  The reported error must mention the
// given fragment.
func CheckInvalid(t *testing.T, test string, fragment string) {
	filename := findProgramFile(t, test)
	//
	t.Parallel()
	//
	err := loadVerifyCompile(filename)
	require.Error(t, err, filename)
	require.Contains(t, err.Error(), fragment)
}

func loadVerifyCompile(filename string) error {
	nodes, err := program.Load(filename)
	if err != nil {
		return err
	}
	//
	for _, node := range nodes {
		if err := node.Verify(); err != nil {
			return err
		}
	}
	//
	_, err = compiler.Compile(nodes)
	//
	return err
}

// Check every chunk (including those within loops) reverses into a chunk which
// still verifies, and that reversing twice preserves the number of flows.
func checkReversed(t *testing.T, filename string, nodes []chunk.Node) {
	for i, node := range nodes {
		switch n := node.(type) {
		case *chunk.Chunk:
			reversed, err := n.TimeReversed()
			require.NoError(t, err, "%s[%d]", filename, i)
			require.NoError(t, reversed.Verify(), "%s[%d]", filename, i)
			//
			twice, err := reversed.TimeReversed()
			require.NoError(t, err, "%s[%d]", filename, i)
			require.Len(t, twice.Flows(), len(n.Flows()))
		case *chunk.Loop:
			checkReversed(t, filename, n.Body())
		}
	}
}

func findProgramFile(t *testing.T, test string) string {
	for _, ext := range PROGRAM_EXTENSIONS {
		filename := fmt.Sprintf("%s/%s.%s", TestDir, test, ext)
		if _, err := os.Stat(filename); err == nil {
			return filename
		}
	}
	//
	t.Fatalf("missing program file for %s", test)
	// unreachable
	return ""
}
