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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filequeue/filequeue/golibs/errors"
	"github.com/filequeue/filequeue/golibs/logging"
)

func testLogger() logging.Logger {
	return logging.NewLogger("chunkfile_test")
}

func openManager(t *testing.T, dir string, chunkSize int) *Manager {
	t.Helper()
	m, err := Open(dir, Config{ChunkSize: chunkSize, MaxOpenChunks: 2}, Position{}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_AppendReadAt_SingleChunk(t *testing.T) {
	m := openManager(t, t.TempDir(), 10)

	pos1, err := m.Append([]byte("one"))
	require.NoError(t, err)
	pos2, err := m.Append([]byte("two"))
	require.NoError(t, err)
	assert.Equal(t, pos1.ChunkID, pos2.ChunkID)

	payload, consumed, err := m.ReadAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "one", string(payload))
	assert.Equal(t, int(pos1.Offset), consumed)

	payload, _, err = m.ReadAt(0, pos1.Offset)
	require.NoError(t, err)
	assert.Equal(t, "two", string(payload))
}

func TestManager_RollsOnChunkSize(t *testing.T) {
	m := openManager(t, t.TempDir(), 2)

	p1, err := m.Append([]byte("a"))
	require.NoError(t, err)
	p2, err := m.Append([]byte("b"))
	require.NoError(t, err)
	p3, err := m.Append([]byte("c"))
	require.NoError(t, err)

	assert.Equal(t, uint32(0), p1.ChunkID)
	assert.Equal(t, uint32(0), p2.ChunkID)
	assert.Equal(t, uint32(1), p3.ChunkID, "third record should roll into a new chunk after ChunkSize=2")

	payload, _, err := m.ReadAt(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "c", string(payload))
}

func TestManager_ReadAtSealedChunkUsesMmap(t *testing.T) {
	m := openManager(t, t.TempDir(), 1)

	_, err := m.Append([]byte("sealed"))
	require.NoError(t, err)
	_, err = m.Append([]byte("head"))
	require.NoError(t, err)

	payload, _, err := m.ReadAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "sealed", string(payload))
}

func TestManager_ReapDeletesOldChunks(t *testing.T) {
	dir := t.TempDir()
	m := openManager(t, dir, 1)

	for i := 0; i < 3; i++ {
		_, err := m.Append([]byte{byte('a' + i)})
		require.NoError(t, err)
	}

	require.NoError(t, m.Reap(2))

	ids, err := m.ListChunkIDs()
	require.NoError(t, err)
	assert.Equal(t, []uint32{2}, ids)

	_, err = os.Stat(filepath.Join(dir, chunkName(0)))
	assert.True(t, os.IsNotExist(err))
}

func TestManager_Open_DiscardsUnconfirmedTrailingBytes(t *testing.T) {
	dir := t.TempDir()
	m := openManager(t, dir, 10)

	pos, err := m.Append([]byte("confirmed"))
	require.NoError(t, err)

	_, err = m.Append([]byte("never flushed"))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	m2, err := Open(dir, Config{ChunkSize: 10, MaxOpenChunks: 2}, pos, testLogger())
	require.NoError(t, err)
	defer m2.Close()

	fi, err := os.Stat(filepath.Join(dir, chunkName(0)))
	require.NoError(t, err)
	assert.Equal(t, pos.Offset, fi.Size())
}

func TestManager_Open_ErrorsWhenHeadChunkShorterThanRecorded(t *testing.T) {
	dir := t.TempDir()
	m := openManager(t, dir, 10)
	pos, err := m.Append([]byte("one"))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	claimedPos := pos
	claimedPos.Offset += 100

	_, err = Open(dir, Config{ChunkSize: 10, MaxOpenChunks: 2}, claimedPos, testLogger())
	assert.ErrorIs(t, err, errors.ErrDataLoss)
}

func TestManager_ReadAt_IncompleteHeadRecord(t *testing.T) {
	dir := t.TempDir()
	m := openManager(t, dir, 10)

	_, err := m.Append([]byte("hello"))
	require.NoError(t, err)

	// The head chunk is still live, so a record that looks torn there is
	// just not durably confirmed yet, never data loss.
	_, _, err = m.ReadAt(0, 1000)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestManager_ReadAt_TornRecordOnSealedChunk(t *testing.T) {
	dir := t.TempDir()
	m := openManager(t, dir, 1)

	_, err := m.Append([]byte("sealed"))
	require.NoError(t, err)
	_, err = m.Append([]byte("head"))
	require.NoError(t, err)

	// Chunk 0 is now sealed: a torn record there can never be completed by
	// a future write, so it is unrecoverable data loss.
	_, _, err = m.ReadAt(0, 1000)
	assert.ErrorIs(t, err, ErrTornRecord)
}

func TestManager_Open_RemovesOrphanedChunkPastHead(t *testing.T) {
	dir := t.TempDir()
	m := openManager(t, dir, 10)

	pos, err := m.Append([]byte("one"))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	// Simulate a crash between roll() creating the next chunk file and the
	// first Append writing into it: an empty chunk 1 exists on disk even
	// though info still points at chunk 0.
	orphan := filepath.Join(dir, chunkName(1))
	require.NoError(t, os.WriteFile(orphan, nil, 0o644))

	m2, err := Open(dir, Config{ChunkSize: 10, MaxOpenChunks: 2}, pos, testLogger())
	require.NoError(t, err)
	defer m2.Close()

	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err), "orphaned chunk past the recovered head should be removed")

	// roll() must be able to create chunk 1 again without hitting O_EXCL.
	var rolled bool
	for i := 0; i < 20; i++ {
		p, err := m2.Append([]byte("x"))
		require.NoError(t, err)
		if p.ChunkID == 1 {
			rolled = true
			break
		}
	}
	assert.True(t, rolled, "manager should have rolled into chunk 1 again")
}

func TestListIDs_EmptyOrMissingDir(t *testing.T) {
	ids, err := ListIDs(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}
