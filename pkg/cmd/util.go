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
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/consensys/go-qflow/pkg/chunk"
	"github.com/consensys/go-qflow/pkg/program"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Get an expected flag, or exit if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected string flag, or exit if an error arises.
func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Read a program file, reporting any errors (with highlighting for syntax
// errors in circuits) and exiting on failure.
func readProgramFile(filename string) []chunk.Node {
	nodes, err := program.Load(filename)
	if err == nil {
		return nodes
	}
	// Handle error
	var circuitErr *program.CircuitError
	//
	if errors.As(err, &circuitErr) {
		for _, e := range circuitErr.Errors {
			line := e.FirstEnclosingLine()
			printSyntaxError(e.SourceFile().Filename(), line.Number(), e.Message(), e.Highlight(isTerminal()))
		}
	} else {
		fmt.Println(err)
	}
	//
	os.Exit(2)
	// unreachable
	return nil
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(filename string, line int, msg string, highlight string) {
	// Print error + line number
	fmt.Printf("%s:%d: %s\n", filename, line, msg)
	// Print line and highlight
	fmt.Println(highlight)
}

// Visit every chunk within a list of nodes, including those nested within
// loops.  Each chunk is identified by its position in the program.
func eachChunk(name string, nodes []chunk.Node, fn func(string, *chunk.Chunk)) {
	for i, node := range nodes {
		path := fmt.Sprintf("%s[%d]", name, i)
		//
		switch n := node.(type) {
		case *chunk.Chunk:
			fn(path+".chunk", n)
		case *chunk.Loop:
			eachChunk(path+".loop.body", n.Body(), fn)
		}
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
