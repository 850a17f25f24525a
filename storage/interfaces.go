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

import "context"

// Backend stores and retrieves blobs by opaque string key.
// A Backend has no knowledge of what the blobs contain.
type Backend interface {
	// Exists reports whether a blob is stored under key.
	// It never fails; an unreadable or invalid key reports false.
	Exists(ctx context.Context, key string) bool

	// Read returns the blob stored under key.
	// Returns ErrNotFound if the key is absent.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores blob under key, fully replacing any previous blob.
	// Returns ErrIOFailure if the medium rejects the write.
	Write(ctx context.Context, key string, blob []byte) error

	// Remove deletes the blob stored under key.
	// Returns ErrNotFound if the key is absent.
	Remove(ctx context.Context, key string) error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	// Keys returns every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)
}

// Codec converts values to their textual form and back.
type Codec interface {
	// Encode serializes v. Well-formed values always encode.
	Encode(v any) ([]byte, error)

	// Decode reconstructs a value from data into shape, which must be a
	// non-nil pointer describing the target type.
	// Returns ErrDecodeFailure on malformed or mismatched input.
	Decode(data []byte, shape any) error

	// Name identifies the codec in logs and configuration.
	Name() string
}
