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


package core

import "errors"

// Domain errors surfaced by collection services.
var (
	// ErrNotFound indicates that no entity with the requested identifier exists.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateID indicates that an entity with the same identifier already
	// exists in the collection.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInvalidArgument indicates that a caller-supplied value failed a precondition.
	ErrInvalidArgument = errors.New("invalid argument")
)
