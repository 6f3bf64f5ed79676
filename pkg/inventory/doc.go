// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package inventory turns CMDB host records into a grouped orchestrator inventory.
//
// # Pipeline
//
// Records flow through four stages:
//
//	records -> Filter -> Resolver -> Group -> Assemble
//
//   - Filter drops records whose hostname or group is denylisted
//     (case-insensitive) and records without a group.
//   - Resolver qualifies short names with a default domain and performs a
//     forward lookup; hosts that do not resolve are dropped.
//   - Group partitions survivors by their group attribute, keeping input
//     order within each group and passing duplicates through.
//   - Assemble adds the synthetic "all" group holding every host.
//
// Builder runs the whole pipeline. Lookups are fanned out over a bounded
// worker pool and written into an index-addressed slice, so the document
// is identical for identical input regardless of lookup completion order.
//
// # Output
//
// An Inventory marshals to JSON (and YAML) with "all" first and the
// remaining groups in order of first appearance:
//
//	{
//	  "all": {"hosts": ["web01", "db01"]},
//	  "webservers": {"hosts": ["web01"]},
//	  "dbteam": {"hosts": ["db01"]}
//	}
//
// # Reserved Group
//
// A CMDB group literally named "all" cannot be represented separately.
// Its hosts are merged into the synthetic "all" collection; the collision is
// reported at debug level.
//
// # Failure Policy
//
// Ineligible records and failed lookups are dropped and logged at debug
// level; they are never errors. Build only fails when the run's context is
// canceled.
package inventory
