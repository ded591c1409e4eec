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

// Package filequeue implements a durable, crash-safe, multi-producer/
// multi-consumer FIFO queue backed by a chunked append-only log on the
// local filesystem. With the default SyncOnPut durability, every Put that
// returns success is guaranteed to survive a crash; Get/TaskDone redelivery
// semantics depend on Options.Autosave.
package filequeue

import (
	"fmt"
	"sync"

	"github.com/filequeue/filequeue/golibs/errors"
	"github.com/filequeue/filequeue/golibs/files"
	"github.com/filequeue/filequeue/golibs/logging"
	"github.com/filequeue/filequeue/internal/chunkfile"
	"github.com/filequeue/filequeue/internal/metastore"
	"github.com/filequeue/filequeue/internal/tracker"
	"github.com/filequeue/filequeue/registry"
	"github.com/filequeue/filequeue/serializer"
)

// Queue is a single logical FIFO queue anchored at a directory. A Queue
// must not be copied after first use.
type Queue[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	opts   Options
	ser    serializer.Serializer[T]
	canon  string
	logger logging.Logger

	chunks  *chunkfile.Manager
	meta    *metastore.Store
	tracker *tracker.Tracker

	head chunkfile.Position
	tail chunkfile.Position
	size int64

	closed bool
}

// Open opens (creating if necessary) the queue rooted at opts.Path using
// ser to encode/decode items. At most one Queue may be open on a given
// canonicalized path within this process at a time.
func Open[T any](opts Options, ser serializer.Serializer[T]) (*Queue[T], error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("Path must not be empty: %w", errors.ErrInvalid)
	}
	if opts.ChunkSize <= 0 {
		return nil, fmt.Errorf("ChunkSize must be positive, got %d: %w", opts.ChunkSize, errors.ErrInvalid)
	}
	if opts.MaxSize < 0 {
		return nil, fmt.Errorf("MaxSize must not be negative, got %d: %w", opts.MaxSize, errors.ErrInvalid)
	}
	opts.applyDefaults()

	if err := files.EnsureDirExists(opts.Path); err != nil {
		return nil, fmt.Errorf("could not create queue directory %s: %w", opts.Path, err)
	}
	if err := files.EnsureDirExists(opts.TempDir); err != nil {
		return nil, fmt.Errorf("could not create temp directory %s: %w", opts.TempDir, err)
	}
	if same, err := files.SameFilesystem(opts.Path, opts.TempDir); err != nil {
		return nil, err
	} else if !same {
		return nil, fmt.Errorf("TempDir %s must be on the same filesystem as Path %s: %w", opts.TempDir, opts.Path, errors.ErrInvalid)
	}

	_, canon, err := registry.Acquire(opts.Path)
	if err != nil {
		return nil, err
	}

	q, err := openLocked(opts, ser, canon)
	if err != nil {
		registry.Release(canon)
		return nil, err
	}
	return q, nil
}

func openLocked[T any](opts Options, ser serializer.Serializer[T], canon string) (*Queue[T], error) {
	meta := metastore.New(opts.Path, opts.TempDir)

	loaded, ok, err := meta.Load()
	if err != nil {
		return nil, err
	}

	ids, err := chunkfile.ListIDs(opts.Path)
	if err != nil {
		return nil, err
	}

	info, err := metastore.Recover(opts.Path, loaded, ok, ids)
	if err != nil {
		return nil, err
	}

	if info.SerializerName != "" {
		if info.SerializerName != ser.Name() {
			return nil, fmt.Errorf("queue was created with serializer %q, cannot reopen with %q: %w", info.SerializerName, ser.Name(), errors.ErrConflict)
		}
		if info.SerializerVersion != ser.Version() {
			return nil, fmt.Errorf("queue was created with serializer version %d, cannot reopen with version %d: %w", info.SerializerVersion, ser.Version(), errors.ErrConflict)
		}
	}
	if info.ChunkSize != 0 && info.ChunkSize != opts.ChunkSize {
		return nil, fmt.Errorf("queue was created with chunksize=%d, cannot reopen with chunksize=%d: %w", info.ChunkSize, opts.ChunkSize, errors.ErrConflict)
	}

	chunkCfg := chunkfile.Config{ChunkSize: opts.ChunkSize, MaxOpenChunks: opts.MaxOpenChunks}
	mgr, err := chunkfile.Open(opts.Path, chunkCfg, info.Head, opts.Logger)
	if err != nil {
		return nil, err
	}

	q := &Queue[T]{
		opts:   opts,
		ser:    ser,
		canon:  canon,
		logger: opts.Logger,
		chunks: mgr,
		meta:   meta,
		head:   info.Head,
		tail:   info.Tail,
		size:   info.Size,
	}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	q.tracker = tracker.New(&q.mu)

	if !ok {
		if err := q.flushInfo(); err != nil {
			mgr.Close()
			return nil, fmt.Errorf("could not write initial info record: %w", err)
		}
	}

	return q, nil
}

func (q *Queue[T]) flushInfo() error {
	if err := q.meta.Flush(metastore.Info{
		Head:              q.head,
		Tail:              q.tail,
		Size:              q.size,
		ChunkSize:         q.opts.ChunkSize,
		SerializerName:    q.ser.Name(),
		SerializerVersion: q.ser.Version(),
	}); err != nil {
		return err
	}

	// A chunk becomes eligible for reaping the moment the tail crosses into
	// the next chunk id; this is the next info flush after that happens.
	if err := q.chunks.Reap(q.tail.ChunkID); err != nil {
		q.logger.Warnf("filequeue: reap up to chunk %05d failed: %v", q.tail.ChunkID, err)
	}
	return nil
}

// Size returns the current logical queue length, without blocking.
func (q *Queue[T]) Size() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Empty reports whether the queue currently holds no items.
func (q *Queue[T]) Empty() bool {
	return q.Size() == 0
}

// Full reports whether the queue is at its MaxSize (always false when MaxSize is 0).
func (q *Queue[T]) Full() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.opts.MaxSize > 0 && q.size >= q.opts.MaxSize
}

// Join blocks until every item handed out by Get has been confirmed by TaskDone.
func (q *Queue[T]) Join() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tracker.Join()
}

// Close flushes the head chunk, persists the info record, and releases all
// file handles. Close is idempotent and best-effort: it reports the first
// error encountered but still releases every resource it can.
func (q *Queue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true

	var firstErr error
	if err := q.chunks.Flush(true); err != nil {
		firstErr = err
	}
	if err := q.flushInfo(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := q.chunks.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	registry.Release(q.canon)
	return firstErr
}
