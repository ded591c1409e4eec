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

package files

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// ROMMFile is a read-only memory mapped file. Unlike MMFile it maps the file
// exactly at its current size - no BlockSize rounding and no Grow() - which
// fits a sealed, never-again-written file such as a closed log chunk.
type ROMMFile struct {
	fn   string
	f    *os.File
	mf   mmap.MMap
	size int64
}

// NewROMMFile opens fname for reading and maps its entire content into memory.
// The file must already exist and be non-empty.
func NewROMMFile(fname string) (*ROMMFile, error) {
	fi, err := os.Stat(fname)
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("cannot map an empty file %s", fname)
	}

	f, err := os.OpenFile(fname, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", fname, err)
	}

	mf, err := mmap.MapRegion(f, int(fi.Size()), mmap.RDONLY, 0, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("could not map file %s to the memory: %w", fname, err)
	}

	return &ROMMFile{fn: fname, f: f, mf: mf, size: fi.Size()}, nil
}

// Size returns the mapped file size.
func (mmf *ROMMFile) Size() int64 {
	return mmf.size
}

// Bytes returns the slice [offs:offs+size) of the mapped file.
func (mmf *ROMMFile) Bytes(offs int64, size int) ([]byte, error) {
	if offs < 0 || offs >= mmf.size {
		return nil, fmt.Errorf("offset=%d out of bounds [0..%d]", offs, mmf.size-1)
	}
	end := offs + int64(size)
	if end > mmf.size {
		return nil, fmt.Errorf("range [%d:%d) out of bounds, size=%d", offs, end, mmf.size)
	}
	return mmf.mf[offs:end], nil
}

// Close unmaps and closes the underlying file.
func (mmf *ROMMFile) Close() error {
	if mmf.f == nil {
		return nil
	}
	err := mmf.mf.Unmap()
	if cerr := mmf.f.Close(); err == nil {
		err = cerr
	}
	mmf.f = nil
	return err
}

func (mmf *ROMMFile) String() string {
	return fmt.Sprintf("ROMMFile{fn=%s, size=%d}", mmf.fn, mmf.size)
}
