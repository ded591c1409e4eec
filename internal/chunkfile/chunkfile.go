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

// Package chunkfile implements the append-only, chunked data log the queue
// writes item records into. A chunk is a plain file named qNNNNN holding a
// sequence of <4-byte little-endian length><payload> records; a chunk is
// rolled once it holds ChunkSize records, never on byte size.
package chunkfile

import (
	"fmt"
)

const (
	// lenPrefixSize is the width, in bytes, of the on-disk record length prefix.
	lenPrefixSize = 4

	chunkNamePattern = "q%05d"
)

// Position identifies a point in the chunked log: a chunk id, the byte
// offset of the next record within that chunk, and how many records have
// already been written/read in that chunk.
type Position struct {
	ChunkID uint32
	Offset  int64
	Count   int
}

func (p Position) String() string {
	return fmt.Sprintf("{chunk=%05d, offset=%d, count=%d}", p.ChunkID, p.Offset, p.Count)
}

func chunkName(id uint32) string {
	return fmt.Sprintf(chunkNamePattern, id)
}
