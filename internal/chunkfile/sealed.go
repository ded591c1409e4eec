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

package chunkfile

import (
	"encoding/binary"
	"fmt"

	"github.com/filequeue/filequeue/golibs/files"
)

// sealedChunk is a read-only, memory-mapped view of a chunk that is no
// longer the head (nothing will ever be appended to it again).
type sealedChunk struct {
	id  uint32
	mmf *files.ROMMFile
}

func (sc *sealedChunk) readAt(offset int64) (payload []byte, consumed int, err error) {
	sz := sc.mmf.Size()
	if offset < 0 || offset >= sz {
		return nil, 0, fmt.Errorf("offset=%d out of bounds for chunk=%05d: %w", offset, sc.id, ErrTornRecord)
	}

	hdr, err := sc.mmf.Bytes(offset, lenPrefixSize)
	if err != nil {
		return nil, 0, fmt.Errorf("chunk=%05d: truncated length prefix at offset=%d: %w", sc.id, offset, ErrTornRecord)
	}

	plen := int(binary.LittleEndian.Uint32(hdr))
	payload, err = sc.mmf.Bytes(offset+lenPrefixSize, plen)
	if err != nil {
		return nil, 0, fmt.Errorf("chunk=%05d: truncated payload (len=%d) at offset=%d: %w", sc.id, plen, offset, ErrTornRecord)
	}

	cp := make([]byte, plen)
	copy(cp, payload)
	return cp, lenPrefixSize + plen, nil
}

func (sc *sealedChunk) close() {
	if err := sc.mmf.Close(); err != nil {
		_ = err // best-effort: the chunk is about to be evicted or reaped anyway
	}
}
