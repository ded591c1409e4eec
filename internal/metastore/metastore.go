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

// Package metastore persists the queue's info record - the head/tail
// pointers, size counter, and serializer identity - via a write-temp,
// fsync, rename protocol so a crash never leaves a half-written snapshot.
package metastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/filequeue/filequeue/golibs/errors"
	"github.com/filequeue/filequeue/golibs/ulidutils"
	"github.com/filequeue/filequeue/internal/chunkfile"
)

// Info is the on-disk metadata snapshot: the head and tail positions, the
// logical size, and the serializer identity the queue was opened with.
type Info struct {
	Head              chunkfile.Position `json:"head"`
	Tail              chunkfile.Position `json:"tail"`
	Size              int64              `json:"size"`
	ChunkSize         int                `json:"chunkSize"`
	SerializerName    string             `json:"serializerName"`
	SerializerVersion uint32             `json:"serializerVersion"`
}

const infoFileName = "info"

// Store manages the canonical "info" file in a queue directory.
type Store struct {
	dir     string
	tempDir string
}

// New creates a Store rooted at dir, staging atomic-replace temp files in
// tempDir (which must live on the same filesystem as dir).
func New(dir, tempDir string) *Store {
	if tempDir == "" {
		tempDir = dir
	}
	return &Store{dir: dir, tempDir: tempDir}
}

// Load reads the current info record. It returns ok=false (and a zero
// Info) if no info file exists yet, which the caller treats as "brand new
// queue: head = tail = (0,0,0), size = 0".
func (s *Store) Load() (info Info, ok bool, err error) {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, false, nil
		}
		return Info{}, false, fmt.Errorf("could not read info file: %w", err)
	}

	if err := json.Unmarshal(b, &info); err != nil {
		return Info{}, false, fmt.Errorf("could not parse info file: %w", err)
	}
	return info, true, nil
}

// Flush persists info via write-temp + fsync + rename. On a failed rename
// the previous info file is left intact and the caller may safely retry.
//
// Caution: rename is atomic on POSIX filesystems. On legacy Windows
// releases without the relevant APIs this degrades to best-effort; callers
// on such platforms should treat a crash mid-rename as a (rare) source of
// an info file stuck at its previous generation rather than corrupted.
func (s *Store) Flush(info Info) error {
	b, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("could not encode info record: %w", err)
	}

	tmp := filepath.Join(s.tempDir, "info.tmp."+ulidutils.NewID())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("could not create info staging file: %w", err)
	}

	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("could not write info staging file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("could not fsync info staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not close info staging file: %w", err)
	}

	if err := os.Rename(tmp, s.path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not rename info staging file into place: %w", err)
	}
	return nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, infoFileName)
}

// Recover reconciles a loaded (or missing) Info against the chunk files
// that actually exist on disk. If info is missing entirely, or its tail
// lies below the lowest-numbered present chunk, or its head chunk is not
// present, pointers are recomputed from disk by scanning from the
// lowest-numbered present chunk rather than failing outright - the only
// case with no possible recovery is a nonzero size with no chunk files
// left to scan. The size counter is not compared against the records on
// disk: an info record whose head and tail chunks are present is returned
// as loaded.
func Recover(dir string, info Info, ok bool, chunkIDs []uint32) (Info, error) {
	if !ok {
		if len(chunkIDs) == 0 {
			return Info{}, nil
		}
		return rescanFromDisk(dir, chunkIDs, Info{})
	}

	if len(chunkIDs) == 0 {
		if info.Size != 0 {
			return Info{}, fmt.Errorf("info file records size=%d but no chunk files exist: %w", info.Size, errors.ErrDataLoss)
		}
		return info, nil
	}

	lowest := chunkIDs[0]
	var headPresent bool
	for _, id := range chunkIDs {
		if id == info.Head.ChunkID {
			headPresent = true
			break
		}
	}

	if info.Tail.ChunkID < lowest || !headPresent {
		return rescanFromDisk(dir, chunkIDs, info)
	}

	return info, nil
}

// rescanFromDisk rebuilds Info purely from the records actually present in
// chunkIDs, ignoring whatever head/tail/size info previously claimed. The
// tail is conservatively reset to the very start of the lowest-numbered
// chunk: this never skips over unconsumed data, at worst causing a handful
// of items to be redelivered rather than silently losing any. ChunkSize and
// serializer identity are not derivable from chunk bytes, so they're kept
// from base when it came from a real (if stale) info record.
func rescanFromDisk(dir string, chunkIDs []uint32, base Info) (Info, error) {
	var total int64
	var head chunkfile.Position
	for i, id := range chunkIDs {
		count, offset, err := chunkfile.ScanChunk(dir, id)
		if err != nil {
			return Info{}, fmt.Errorf("could not rescan chunk %05d while rebuilding info: %w", id, err)
		}
		total += int64(count)
		if i == len(chunkIDs)-1 {
			head = chunkfile.Position{ChunkID: id, Offset: offset, Count: count}
		}
	}

	rebuilt := Info{
		Head: head,
		Tail: chunkfile.Position{ChunkID: chunkIDs[0], Offset: 0, Count: 0},
		Size: total,
	}
	if base.ChunkSize != 0 {
		rebuilt.ChunkSize = base.ChunkSize
		rebuilt.SerializerName = base.SerializerName
		rebuilt.SerializerVersion = base.SerializerVersion
	}
	return rebuilt, nil
}
