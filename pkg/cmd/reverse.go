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
	"strings"

	"github.com/consensys/go-qflow/pkg/chunk"
	"github.com/spf13/cobra"
)

// reverseCmd represents the reverse command
var reverseCmd = &cobra.Command{
	Use:   "reverse [flags] program_file",
	Short: "Print the time-reversal of every chunk in a program.",
	Long: `Print the time-reversal of every chunk in a program, together with its
reversed flows.  Each reversed chunk is verified before being printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			builder strings.Builder
			ok      = true
		)
		//
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		eachChunk(args[0], readProgramFile(args[0]), func(path string, c *chunk.Chunk) {
			reversed, err := c.TimeReversed()
			if err == nil {
				err = reversed.Verify()
			}
			//
			if err != nil {
				fmt.Printf("%s: %s\n", path, err)
				ok = false
			} else {
				writeChunk(&builder, path, reversed)
			}
		})
		//
		if !ok {
			os.Exit(1)
		}
		//
		writeOutput(getString(cmd, "output"), builder.String())
	},
}

// Write a chunk as a commented header listing its flows, followed by its
// circuit.
func writeChunk(builder *strings.Builder, path string, c *chunk.Chunk) {
	fmt.Fprintf(builder, "# %s\n", path)
	//
	for _, f := range c.Flows() {
		fmt.Fprintf(builder, "# %s\n", f.String())
	}
	//
	builder.WriteString(c.Circuit().String())
}

func init() {
	reverseCmd.Flags().StringP("output", "o", "", "specify output file")
	rootCmd.AddCommand(reverseCmd)
}
