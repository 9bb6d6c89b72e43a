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
	"fmt"
	"os"

	"github.com/consensys/go-qflow/pkg/compiler"
	"github.com/consensys/go-qflow/pkg/util"
	"github.com/spf13/cobra"
)

// compileCmd represents the compile command
var compileCmd = &cobra.Command{
	Use:   "compile [flags] program_file",
	Short: "Compile a program into a single annotated circuit.",
	Long: `Compile a program into a single circuit, annotated with the detectors and
observables arising from the flows of its chunks.  Loops whose iterations
settle into a steady state are folded into REPEAT blocks.`,
	Run: func(cmd *cobra.Command, args []string) {
		var options []compiler.Option
		//
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		if getFlag(cmd, "ignore-errors") {
			options = append(options, compiler.WithIgnoreErrors())
		}
		//
		nodes := readProgramFile(args[0])
		stats := util.NewPerfStats()
		//
		circ, err := compiler.Compile(nodes, options...)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		stats.Log("compilation")
		writeOutput(getString(cmd, "output"), circ.String())
	},
}

// Write text to the given file, or to stdout when no file is given.
func writeOutput(filename string, text string) {
	if filename == "" {
		fmt.Print(text)
	} else if err := os.WriteFile(filename, []byte(text), 0644); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}

func init() {
	compileCmd.Flags().Bool("ignore-errors", false, "log (rather than fail on) missing or unused flows")
	compileCmd.Flags().StringP("output", "o", "", "specify output file")
	rootCmd.AddCommand(compileCmd)
}
