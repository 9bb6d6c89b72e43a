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

	"github.com/consensys/go-qflow/pkg/chunk"
	"github.com/consensys/go-qflow/pkg/stabilizer"
	"github.com/spf13/cobra"
)

// flowsCmd represents the flows command
var flowsCmd = &cobra.Command{
	Use:   "flows [flags] program_file",
	Short: "Print the stabilizer flow generators of every chunk in a program.",
	Long: `Print a generating set for the stabilizer flows of the circuit of every chunk
in a program.  Every flow the circuit implements is a product of these.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		eachChunk(args[0], readProgramFile(args[0]), func(path string, c *chunk.Chunk) {
			tableau, err := stabilizer.NewTableau(c.Circuit(), c.QubitIndices())
			if err != nil {
				fmt.Printf("%s: %s\n", path, err)
				os.Exit(1)
			}
			//
			fmt.Printf("# %s\n", path)
			//
			for _, f := range tableau.Generators() {
				fmt.Println(f.String())
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(flowsCmd)
}
