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
	"os"
	"path/filepath"
	"sort"

	"github.com/filequeue/filequeue/golibs/container/lru"
	"github.com/filequeue/filequeue/golibs/errors"
	"github.com/filequeue/filequeue/golibs/files"
	"github.com/filequeue/filequeue/golibs/logging"
)

// Config carries the chunk manager's settings. ChunkSize is the number of
// records a chunk may hold before it is rolled; MaxOpenChunks bounds the
// number of sealed (non-head) chunks kept memory-mapped at once.
type Config struct {
	ChunkSize     int
	MaxOpenChunks int
}

// Manager owns the sequence of qNNNNN chunk files rooted at a directory.
// Its methods are not internally synchronized against each other - the
// caller (the queue facade) is expected to serialize access through its own
// mutex, exactly as it serializes the in-memory head/tail pointers that
// Manager's return values feed into.
type Manager struct {
	dir    string
	cfg    Config
	logger logging.Logger

	headID   uint32
	headFile *os.File
	offset   int64
	count    int

	sealed *lru.Cache[uint32, *sealedChunk]
}

// Open opens (or creates) the chunk manager rooted at dir, positioning the
// write head at pos. If the physical head chunk file is longer than
// pos.Offset, the extra bytes are a record whose Put never durably
// completed (the info record was never advanced past it) and are
// discarded by truncating the file down to pos.Offset.
func Open(dir string, cfg Config, pos Position, logger logging.Logger) (*Manager, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("ChunkSize must be positive, got %d: %w", cfg.ChunkSize, errors.ErrInvalid)
	}
	if cfg.MaxOpenChunks <= 0 {
		cfg.MaxOpenChunks = 8
	}

	m := &Manager{dir: dir, cfg: cfg, logger: logger}
	cache, err := lru.NewCache[uint32, *sealedChunk](cfg.MaxOpenChunks, m.loadSealed, m.evictSealed)
	if err != nil {
		return nil, err
	}
	m.sealed = cache

	if err := m.removeOrphansAbove(pos.ChunkID); err != nil {
		return nil, err
	}

	if err := m.openHead(pos); err != nil {
		return nil, err
	}
	return m, nil
}

// removeOrphansAbove deletes any chunk file with id greater than headID. A
// crash between roll() creating the next chunk file and Append writing its
// first record leaves exactly one such file behind, and the recovered info
// record never points past its own head - so anything above headID is
// always safe to discard, and must be: roll() recreates that id with
// O_EXCL and would otherwise wedge permanently on "file exists".
func (m *Manager) removeOrphansAbove(headID uint32) error {
	ids, err := ListIDs(m.dir)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id <= headID {
			continue
		}
		fn := filepath.Join(m.dir, chunkName(id))
		if err := os.Remove(fn); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("could not remove orphaned chunk %s left by an incomplete roll: %w", fn, err)
		}
		m.logger.Warnf("chunkfile: removed orphaned chunk %s left by an incomplete roll past head %05d", chunkName(id), headID)
	}
	return nil
}

func (m *Manager) openHead(pos Position) error {
	fn := filepath.Join(m.dir, chunkName(pos.ChunkID))
	f, err := os.OpenFile(fn, os.O_CREATE|os.O_RDWR, 0640)
	if err != nil {
		return fmt.Errorf("could not open head chunk %s: %w", fn, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("could not stat head chunk %s: %w", fn, err)
	}

	if fi.Size() < pos.Offset {
		f.Close()
		return fmt.Errorf("head chunk %s is shorter (%d bytes) than the recorded offset %d: %w", fn, fi.Size(), pos.Offset, errors.ErrDataLoss)
	}
	if fi.Size() > pos.Offset {
		m.logger.Warnf("chunkfile: discarding %d trailing byte(s) past the last confirmed record in %s", fi.Size()-pos.Offset, fn)
		if err := f.Truncate(pos.Offset); err != nil {
			f.Close()
			return fmt.Errorf("could not truncate head chunk %s to %d: %w", fn, pos.Offset, err)
		}
	}

	m.headID = pos.ChunkID
	m.headFile = f
	m.offset = pos.Offset
	m.count = pos.Count
	return nil
}

// Append writes one record to the head chunk, rolling to a new chunk first
// if the head is already at capacity. It returns the position immediately
// past the written record.
func (m *Manager) Append(payload []byte) (Position, error) {
	if m.count >= m.cfg.ChunkSize {
		if err := m.roll(); err != nil {
			return Position{}, err
		}
	}

	var hdr [lenPrefixSize]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))

	if _, err := m.headFile.Write(hdr[:]); err != nil {
		return Position{}, fmt.Errorf("could not write record length prefix: %w", err)
	}
	if len(payload) > 0 {
		if _, err := m.headFile.Write(payload); err != nil {
			return Position{}, fmt.Errorf("could not write record payload: %w", err)
		}
	}

	m.offset += int64(lenPrefixSize + len(payload))
	m.count++
	return Position{ChunkID: m.headID, Offset: m.offset, Count: m.count}, nil
}

func (m *Manager) roll() error {
	next := m.headID + 1
	fn := filepath.Join(m.dir, chunkName(next))
	f, err := os.OpenFile(fn, os.O_CREATE|os.O_RDWR|os.O_EXCL, 0640)
	if err != nil {
		return fmt.Errorf("could not create chunk %s: %w", fn, err)
	}

	prevID, prevFile := m.headID, m.headFile
	m.headID, m.headFile, m.offset, m.count = next, f, 0, 0
	m.logger.Infof("chunkfile: rolled to chunk %s", chunkName(next))

	if err := prevFile.Close(); err != nil {
		m.logger.Warnf("chunkfile: error closing sealed chunk %05d: %v", prevID, err)
	}
	return nil
}

// ReadAt reads one record at the given position. If chunkID is the current
// head, the live file is read directly; otherwise a cached, memory-mapped
// read-only handle is used.
func (m *Manager) ReadAt(chunkID uint32, offset int64) (payload []byte, consumed int, err error) {
	if chunkID == m.headID {
		return m.readHeadAt(offset)
	}

	sc, err := m.sealed.GetOrCreate(chunkID)
	if err != nil {
		return nil, 0, err
	}
	return sc.readAt(offset)
}

// readHeadAt reads one record from the live head chunk. A record found
// incomplete here (length prefix or payload running past what's on disk)
// was never durably confirmed - it is not data loss, just nothing to
// return yet, so it is reported via ErrIncomplete rather than ErrTornRecord.
func (m *Manager) readHeadAt(offset int64) ([]byte, int, error) {
	var hdr [lenPrefixSize]byte
	n, err := m.headFile.ReadAt(hdr[:], offset)
	if n < lenPrefixSize {
		return nil, 0, fmt.Errorf("head chunk %05d: incomplete length prefix at offset=%d: %w", m.headID, offset, ErrIncomplete)
	}
	_ = err

	plen := int(binary.LittleEndian.Uint32(hdr[:]))
	payload := make([]byte, plen)
	n, err = m.headFile.ReadAt(payload, offset+lenPrefixSize)
	if n < plen {
		return nil, 0, fmt.Errorf("head chunk %05d: incomplete payload (len=%d) at offset=%d: %w", m.headID, plen, offset, ErrIncomplete)
	}

	return payload, lenPrefixSize + plen, nil
}

// ScanChunk parses every complete length-prefixed record in chunk id within
// dir, starting from the beginning of the file. It stops at the first
// record whose length prefix or payload runs past end-of-file - a trailing
// partial write left by a crash - and reports how many complete records
// came before it and the offset immediately past the last one. It opens
// the file directly with no caching, so it is safe to call during recovery
// before a Manager exists.
func ScanChunk(dir string, id uint32) (count int, offset int64, err error) {
	fn := filepath.Join(dir, chunkName(id))
	f, err := os.Open(fn)
	if err != nil {
		return 0, 0, fmt.Errorf("could not open chunk %s for scanning: %w", fn, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, 0, fmt.Errorf("could not stat chunk %s while scanning: %w", fn, err)
	}
	size := fi.Size()

	var off int64
	for {
		var hdr [lenPrefixSize]byte
		n, _ := f.ReadAt(hdr[:], off)
		if n < lenPrefixSize {
			break
		}
		plen := int64(binary.LittleEndian.Uint32(hdr[:]))
		recEnd := off + lenPrefixSize + plen
		if recEnd > size {
			break
		}
		off = recEnd
		count++
	}
	return count, off, nil
}

// Flush flushes the head chunk's pending writes; if durable is true it also
// asks the OS to sync the file to stable storage.
func (m *Manager) Flush(durable bool) error {
	if !durable {
		return nil
	}
	return m.headFile.Sync()
}

// Reap deletes every chunk file with id strictly less than upToExclusive.
func (m *Manager) Reap(upToExclusive uint32) error {
	ids, err := m.ListChunkIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id >= upToExclusive {
			continue
		}
		m.sealed.Remove(id)
		fn := filepath.Join(m.dir, chunkName(id))
		if err := os.Remove(fn); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("could not reap chunk %s: %w", fn, err)
		}
		m.logger.Debugf("chunkfile: reaped chunk %s", chunkName(id))
	}
	return nil
}

// ListChunkIDs returns every qNNNNN id currently present on disk, sorted ascending.
func (m *Manager) ListChunkIDs() ([]uint32, error) {
	return ListIDs(m.dir)
}

// ListIDs returns every qNNNNN chunk id present in dir, sorted ascending.
// It is safe to call before a Manager is opened, which recovery needs to
// reconcile a loaded (or missing) info record against disk reality.
func ListIDs(dir string) ([]uint32, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not list chunk directory %s: %w", dir, err)
	}

	ids := make([]uint32, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var id uint32
		if _, err := fmt.Sscanf(e.Name(), chunkNamePattern, &id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Head returns the manager's current write position.
func (m *Manager) Head() Position {
	return Position{ChunkID: m.headID, Offset: m.offset, Count: m.count}
}

// Close flushes and releases every open file handle, including cached
// sealed-chunk mappings.
func (m *Manager) Close() error {
	m.sealed.Clear()
	if m.headFile == nil {
		return nil
	}
	err := m.headFile.Close()
	m.headFile = nil
	return err
}

func (m *Manager) loadSealed(id uint32) (*sealedChunk, error) {
	fn := filepath.Join(m.dir, chunkName(id))
	mmf, err := files.NewROMMFile(fn)
	if err != nil {
		return nil, fmt.Errorf("could not map sealed chunk %s: %w", fn, err)
	}
	return &sealedChunk{id: id, mmf: mmf}, nil
}

func (m *Manager) evictSealed(_ uint32, sc *sealedChunk) {
	sc.close()
}
