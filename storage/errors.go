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


package storage

import "errors"

var (
	// ErrNotFound indicates that no blob is stored under the requested key.
	ErrNotFound = errors.New("key not found")

	// ErrIOFailure indicates that the backend medium rejected an operation.
	ErrIOFailure = errors.New("storage i/o failure")

	// ErrDecodeFailure indicates that stored text does not match the requested shape.
	ErrDecodeFailure = errors.New("decode failed")

	// ErrEncodeFailure indicates that a value could not be serialized.
	ErrEncodeFailure = errors.New("encode failed")

	// ErrUnsupported indicates that a backend does not support the operation.
	ErrUnsupported = errors.New("operation not supported")
)
