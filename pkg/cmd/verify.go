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
	"cmp"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/consensys/go-qflow/pkg/chunk"
	"github.com/consensys/go-qflow/pkg/util"
	"github.com/consensys/go-qflow/pkg/verify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [flags] program_file(s)",
	Short: "Check every chunk of a program implements its flows.",
	Long: `Check that the circuit of every chunk in a program implements the flows
declared for it, that every reflow is consistent and that the body of every
loop can follow itself.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		report := getFlag(cmd, "report")
		ok := true
		//
		for _, filename := range args {
			nodes := readProgramFile(filename)
			stats := util.NewPerfStats()
			ok = verifyNodes(filename, nodes, report) && ok
			stats.Log(fmt.Sprintf("verification of %s", filename))
		}
		//
		if !ok {
			os.Exit(1)
		}
	},
}

// Verify a sequence of nodes, printing any failures found.
func verifyNodes(name string, nodes []chunk.Node, report bool) bool {
	ok := true
	//
	for i, node := range nodes {
		path := fmt.Sprintf("%s[%d]", name, i)
		//
		switch n := node.(type) {
		case *chunk.Chunk:
			ok = verifyChunk(path+".chunk", n, report) && ok
		case *chunk.Loop:
			if verifyNodes(path+".loop.body", n.Body(), report) {
				ok = checkNode(path+".loop", n) && ok
			} else {
				ok = false
			}
		default:
			ok = checkNode(path, n) && ok
		}
	}
	//
	return ok
}

// Verify a single chunk, reporting every failing flow rather than just the
// first.
func verifyChunk(path string, c *chunk.Chunk, report bool) bool {
	r, err := c.VerifyWith(verify.Options{IgnoreErrors: true})
	//
	if err != nil {
		fmt.Printf("%s: %s\n", path, err)
		return false
	}
	//
	for _, failure := range r.Failures {
		fmt.Printf("%s: %s\n", path, failure.Message())
	}
	//
	if report {
		printReport(path, r)
	}
	//
	if len(r.Failures) == 0 {
		log.Debugf("%s: verified %d flows", path, len(c.Flows()))
	}
	//
	return len(r.Failures) == 0
}

func checkNode(path string, node chunk.Node) bool {
	if err := node.Verify(); err != nil {
		fmt.Printf("%s: %s\n", path, err)
		return false
	}
	//
	log.Debugf("%s: verified", path)
	//
	return true
}

// Print which measurements are destructive, and which flows pass through each
// reset.
func printReport(path string, r *verify.Report) {
	for i, m := range r.Measurements {
		kind := "non-destructive"
		if m.Destructive {
			kind = "destructive"
		}
		//
		fmt.Printf("%s: rec[%d] %s on qubit %d\n", path, i, kind, m.Qubit)
	}
	//
	sites := slices.Collect(maps.Keys(r.Resets))
	slices.SortFunc(sites, func(a, b verify.Site) int {
		if c := cmp.Compare(a.Instruction, b.Instruction); c != 0 {
			return c
		}
		//
		return cmp.Compare(a.Target, b.Target)
	})
	//
	for _, site := range sites {
		fmt.Printf("%s: reset (instruction %d, target %d) carries flows %v\n", path, site.Instruction,
			site.Target, r.Resets[site])
	}
}

func init() {
	verifyCmd.Flags().Bool("report", false, "report destructive measurements and resets carrying flows")
	rootCmd.AddCommand(verifyCmd)
}
