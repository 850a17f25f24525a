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


// Package storage provides the storage abstraction layer for blobstore.
//
// This package defines the two swappable pieces of the store and the façade
// that composes them:
//
//   - Backend: raw key to blob storage (memory, filesystem, BadgerDB, SQL),
//     optionally wrapped by compress for zstd at rest
//   - Codec: conversion between in-memory values and their textual form
//   - Store: one Codec plus one Backend behind CanLoad/Load/Save/TrySave
//
// # Constructor Return Type Pattern
//
// Backend packages return their concrete type so callers can reach
// backend-specific methods (Close, Keys). Consumers should depend on the
// storage.Backend interface:
//
//	backend := filesystem.New("/var/lib/app")  // *filesystem.Backend
//	store := storage.NewStore(storage.JSONCodec{}, backend)
//
// # Usage
//
// Save and load a value by key:
//
//	if err := store.Save(ctx, "Scheduling/Lessons", lessons); err != nil {
//	    return err
//	}
//	lessons, err := storage.Load[[]Lesson](ctx, store, "Scheduling/Lessons")
//
// Use in tests with in-memory storage:
//
//	store := storage.NewStore(storage.JSONCodec{}, memory.New())
//
// # Errors
//
// Backends report ErrNotFound and ErrIOFailure, codecs report
// ErrDecodeFailure and ErrEncodeFailure. The Store propagates them wrapped
// with the key; match with errors.Is.
//
// # Context Support
//
// All Backend and Store methods accept context.Context to match the rest of
// the codebase. Operations are synchronous and are not interrupted once the
// underlying I/O has started.
package storage
