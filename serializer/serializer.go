// Copyright 2024 The Filequeue Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package serializer defines the codec contract the queue uses to turn
// items into length-prefixable byte strings and back, and ships two
// concrete implementations.
package serializer

// Serializer encodes and decodes a single item of type T. Name and Version
// are written into the queue's info record on first initialization and
// compared on every reopen; a mismatch is a configuration error, not a
// silent reinterpretation of existing records.
type Serializer[T any] interface {
	Name() string
	Version() uint32
	Encode(v T) ([]byte, error)
	Decode(b []byte) (T, error)
}
