// Copyright 2025 go-highway Authors
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

// Package algo provides algorithm utilities for SIMD operations.
// This package corresponds to Google Highway's hwy/contrib/algo directory.
//
// # Prefix sum
//
// BasePrefixSum computes an inclusive prefix sum in place, vectorized with
// a lane-wise carry-propagation scan and a scalar tail. It is the building
// block the join package's radix partitioner uses to turn a per-block
// partition histogram into exclusive bucket offsets (see
// join.histogramToOffsets).
//
// # Build Requirements
//
// BasePrefixSum and BaseDeltaDecode are portable: they process
// hwy.MaxLanes[T]() elements per iteration through hwy's Vec[T]
// operations and a scalar tail, with no architecture-specific build
// requirement.
package algo
