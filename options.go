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

import "github.com/filequeue/filequeue/golibs/logging"

// DurabilityMode controls when the chunk manager is asked to fsync the
// head chunk's freshly appended bytes. It is independent of Autosave,
// which controls when the *tail* pointer is persisted.
type DurabilityMode int

const (
	// SyncOnPut fsyncs the head chunk on every Put. Default, and the
	// safe choice: a Put that returns success is guaranteed durable.
	SyncOnPut DurabilityMode = iota
	// SyncOnTaskDone defers the fsync of appended bytes until the next
	// TaskDone, trading a window of post-crash data loss for fewer syncs.
	SyncOnTaskDone
	// NoSync never explicitly fsyncs chunk data; it relies on the OS page
	// cache (or an eventual Close) to persist it. Least durable, fastest.
	NoSync
)

// Options configures a Queue.
type Options struct {
	// Path is the queue's root directory; created if absent.
	Path string
	// MaxSize is a soft cap on logical queue length. 0 means unbounded.
	MaxSize int64
	// ChunkSize is the number of records a chunk file holds before the
	// manager rolls to the next one. Must be positive.
	ChunkSize int
	// TempDir stages atomic info-record replacement. Must be on the same
	// filesystem as Path. Defaults to Path.
	TempDir string
	// Autosave, when true, makes Get persist the advanced tail immediately
	// (at-most-once w.r.t. restart). When false (default), tail
	// persistence is deferred to TaskDone (at-least-once redelivery).
	Autosave bool
	// Durability governs chunk-data fsync cadence. Defaults to SyncOnPut.
	Durability DurabilityMode
	// MaxOpenChunks bounds how many sealed chunks are kept memory-mapped
	// at once. Defaults to 8.
	MaxOpenChunks int
	// Logger receives the queue's diagnostic output. Defaults to
	// logging.NewLogger("filequeue").
	Logger logging.Logger
}

func (o *Options) applyDefaults() {
	if o.TempDir == "" {
		o.TempDir = o.Path
	}
	if o.MaxOpenChunks <= 0 {
		o.MaxOpenChunks = 8
	}
	if o.Logger == nil {
		o.Logger = logging.NewLogger("filequeue")
	}
}
