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

package filequeue

import (
	"fmt"
	"time"

	"github.com/filequeue/filequeue/golibs/errors"
	"github.com/filequeue/filequeue/internal/chunkfile"
)

// Put encodes item and appends it to the queue. If MaxSize is reached and
// block is false, it fails immediately with ErrFull. If block is true and
// timeout is 0, it waits indefinitely for room; if timeout is positive, it
// waits at most that long before failing with a timeout error.
//
// With the default SyncOnPut durability, a Put that returns nil guarantees
// item is on disk and will survive a crash; SyncOnTaskDone and NoSync return
// before the appended bytes are fsynced.
func (q *Queue[T]) Put(item T, block bool, timeout time.Duration) error {
	payload, err := q.ser.Encode(item)
	if err != nil {
		return fmt.Errorf("could not encode item: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	var deadline time.Time
	if block && timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for q.opts.MaxSize > 0 && q.size >= q.opts.MaxSize {
		if q.closed {
			return fmt.Errorf("queue is closed: %w", errors.ErrClosed)
		}
		if !block {
			return ErrFull
		}
		if timeout > 0 {
			if !time.Now().Before(deadline) {
				return fmt.Errorf("put timed out waiting for room: %w", errors.ErrTimeout)
			}
			waitUntil(q.notFull, deadline)
			continue
		}
		q.notFull.Wait()
	}
	if q.closed {
		return fmt.Errorf("queue is closed: %w", errors.ErrClosed)
	}

	prevHead := q.head
	pos, err := q.chunks.Append(payload)
	if err != nil {
		return fmt.Errorf("could not append record: %w", err)
	}

	if err := q.chunks.Flush(q.opts.Durability == SyncOnPut); err != nil {
		return fmt.Errorf("could not flush chunk: %w", err)
	}

	q.head = pos
	q.size++

	if err := q.flushInfo(); err != nil {
		q.head = prevHead
		q.size--
		return fmt.Errorf("could not persist info record: %w", err)
	}

	q.notEmpty.Signal()
	return nil
}

// Get returns the next item in FIFO order. If the queue is empty and block
// is false, it fails immediately with ErrEmpty. If block is true and
// timeout is 0, it waits indefinitely for an item; if timeout is positive,
// it waits at most that long before failing with a timeout error.
//
// The returned item is outstanding until TaskDone is called for it.
func (q *Queue[T]) Get(block bool, timeout time.Duration) (T, error) {
	var zero T

	q.mu.Lock()
	defer q.mu.Unlock()

	var deadline time.Time
	if block && timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for q.size == 0 {
		if q.closed {
			return zero, fmt.Errorf("queue is closed: %w", errors.ErrClosed)
		}
		if !block {
			return zero, ErrEmpty
		}
		if timeout > 0 {
			if !time.Now().Before(deadline) {
				return zero, fmt.Errorf("get timed out waiting for an item: %w", errors.ErrTimeout)
			}
			waitUntil(q.notEmpty, deadline)
			continue
		}
		q.notEmpty.Wait()
	}
	if q.closed {
		return zero, fmt.Errorf("queue is closed: %w", errors.ErrClosed)
	}

	if q.tail.ChunkID < q.head.ChunkID && q.tail.Count >= q.opts.ChunkSize {
		// The tail drained a full chunk before the head rolled past it.
		q.tail = chunkfile.Position{ChunkID: q.tail.ChunkID + 1, Offset: 0, Count: 0}
	}

	payload, consumed, err := q.chunks.ReadAt(q.tail.ChunkID, q.tail.Offset)
	if err != nil {
		if errors.Is(err, chunkfile.ErrIncomplete) {
			// The record at the tail was never durably confirmed - discard
			// it internally and treat the queue as empty at this position,
			// regardless of block/timeout, since no further write is ever
			// coming for this tail position. q.size/q.tail are untouched.
			return zero, ErrEmpty
		}
		return zero, fmt.Errorf("could not read record at %s: %w", q.tail, err)
	}

	item, err := q.ser.Decode(payload)
	if err != nil {
		return zero, fmt.Errorf("could not decode record at %s: %w", q.tail, err)
	}

	prevTail := q.tail
	newTail := chunkfile.Position{ChunkID: q.tail.ChunkID, Offset: q.tail.Offset + int64(consumed), Count: q.tail.Count + 1}
	if newTail.ChunkID < q.head.ChunkID && newTail.Count >= q.opts.ChunkSize {
		newTail = chunkfile.Position{ChunkID: newTail.ChunkID + 1, Offset: 0, Count: 0}
	}

	q.tail = newTail
	q.size--

	if q.opts.Autosave {
		if err := q.flushInfo(); err != nil {
			q.tail = prevTail
			q.size++
			return zero, fmt.Errorf("could not persist info record: %w", err)
		}
	}

	q.tracker.Handed()
	q.notFull.Signal()
	return item, nil
}

// TaskDone confirms that one item returned by Get has been fully
// processed. It is a programming error to call TaskDone more times than
// Get has returned successfully.
func (q *Queue[T]) TaskDone() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.tracker.Done(); err != nil {
		return err
	}

	if q.opts.Durability == SyncOnTaskDone {
		if err := q.chunks.Flush(true); err != nil {
			return fmt.Errorf("could not fsync chunk on task_done: %w", err)
		}
	}

	if !q.opts.Autosave {
		if err := q.flushInfo(); err != nil {
			return fmt.Errorf("could not persist info record on task_done: %w", err)
		}
	}
	return nil
}
