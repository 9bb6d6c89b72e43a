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
	"testing"
)

// ===================================================================
// Memory Experiments
// ===================================================================

func Test_Valid_Memory_01(t *testing.T) {
	Check(t, "valid/memory_01")
}

func Test_Valid_Memory_02(t *testing.T) {
	Check(t, "valid/memory_02")
}

// ===================================================================
// Observables
// ===================================================================

func Test_Valid_Observable_01(t *testing.T) {
	Check(t, "valid/observable_01")
}

// ===================================================================
// Reflows
// ===================================================================

func Test_Valid_Reflow_01(t *testing.T) {
	Check(t, "valid/reflow_01")
}
