// Copyright 2025 Poiesic Systems
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


// Package collection implements the whole-collection repository pattern.
//
// A Repository owns one storage key holding an entire ordered collection of
// entities. Every mutation loads the whole collection, changes it in memory
// and writes the whole collection back:
//
//	repo := collection.New(store, core.KeyIssueReports, collection.Identity[Report, int]{
//	    ID:    func(r Report) int { return r.ID },
//	    SetID: func(r *Report, id int) { r.ID = id },
//	    Next:  collection.NextIntID[int],
//	})
//	added, err := repo.Add(ctx, Report{Title: "Bug A"})
//
// # Identity
//
// The Identity strategy tells the repository how to read and assign
// identifiers, so a single implementation serves every entity type. The
// zero value of ID means "no identifier": Add assigns one through Next, and
// lookups by the zero ID never match.
//
// # Locking
//
// Each load-mutate-save sequence runs under a lock keyed by the storage
// key. Repositories that share a Locks value (WithLocks) and a key exclude
// each other; by default every repository gets its own Locks. Locking is
// process-local and does not coordinate separate processes sharing a
// backend.
//
// # Errors
//
// A missing key reads as an empty collection. A key that exists but cannot
// be read or decoded fails with ErrLoadFailed rather than reading as empty,
// so a corrupt blob is never silently overwritten by the next mutation.
package collection
