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
// Composition
// ===================================================================

func Test_Invalid_Missing_01(t *testing.T) {
	CheckInvalid(t, "invalid/missing_01", "missing input")
}

func Test_Invalid_Unused_01(t *testing.T) {
	CheckInvalid(t, "invalid/unused_01", "unused output")
}

func Test_Invalid_Unused_02(t *testing.T) {
	CheckInvalid(t, "invalid/unused_02", "unused output")
}

func Test_Invalid_Reflow_01(t *testing.T) {
	CheckInvalid(t, "invalid/reflow_01", "is not the product of")
}

func Test_Invalid_Loop_01(t *testing.T) {
	CheckInvalid(t, "invalid/loop_01", "loop produces")
}

// ===================================================================
// Verification
// ===================================================================

func Test_Invalid_Verify_01(t *testing.T) {
	CheckInvalid(t, "invalid/verify_01", "does not hold")
}

func Test_Invalid_Verify_02(t *testing.T) {
	CheckInvalid(t, "invalid/verify_02", "anticommuted with measurement")
}

func Test_Invalid_Verify_03(t *testing.T) {
	CheckInvalid(t, "invalid/verify_03", "beyond the end of the circuit")
}

// ===================================================================
// Syntax
// ===================================================================

func Test_Invalid_Syntax_01(t *testing.T) {
	CheckInvalid(t, "invalid/syntax_01", "syntax_01.yaml[0].chunk")
}

func Test_Invalid_Syntax_02(t *testing.T) {
	CheckInvalid(t, "invalid/syntax_02", "missing '}'")
}
