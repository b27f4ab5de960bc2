// Copyright 2026 The Tacitus Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vm implements the Tacitus stack virtual machine: a NaN-boxed
// tagged value encoding, a segmented cell arena (globals, data stack,
// return stack), a string digest, a symbol dictionary and the bytecode
// interpreter loop that ties them together.
//
// A Cell is always 32 bits. If its bit pattern decodes as a real IEEE-754
// float32, it holds a number. Otherwise it is a non-canonical NaN carrying
// a tag, a meta bit and a payload; see Tag for the full encoding.
//
// Globals, the data stack and the return stack all live in one
// contiguous []Cell that never grows after construction, partitioned by
// region boundaries fixed at construction time (see Option). The code
// segment and the string digest are separate Go slices that grow as
// source is compiled.
package vm
