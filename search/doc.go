// Copyright 2026 Glyphica Labs
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


// Package search implements the icon search orchestrator.
//
// The Orchestrator owns the in-memory icon catalog and the active
// vector store, decides when embeddings must be (re)generated, and
// answers queries through a layered fallback chain:
//   - vector similarity search when the embedding model is available
//   - substring matching when it is not, or when vector search fails
//     or returns nothing
//   - an empty result as the final floor
//
// SearchIcons never returns an error; degradation is reported through
// the returned SearchMode instead.
package search
