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

	"github.com/filequeue/filequeue/golibs/errors"
	"github.com/filequeue/filequeue/internal/chunkfile"
)

var (
	// ErrEmpty is returned by Get in non-blocking mode, or after its timeout
	// elapses, while the queue holds no items.
	ErrEmpty = fmt.Errorf("filequeue: queue is empty: %w", errors.ErrExhausted)
	// ErrFull is returned by Put in non-blocking mode, or after its timeout
	// elapses, while the queue is at MaxSize.
	ErrFull = fmt.Errorf("filequeue: queue is full: %w", errors.ErrExhausted)
	// ErrTornRecord is surfaced when a non-head chunk holds a record whose
	// length prefix claims more bytes than the file has - data loss, since
	// a sealed chunk should never be modified again.
	ErrTornRecord = chunkfile.ErrTornRecord
)

// Is reports whether err matches target, per errors.Is semantics; exported
// so callers don't need a second import just to test a sentinel.
func Is(err, target error) bool { return errors.Is(err, target) }
