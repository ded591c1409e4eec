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

// Package tracker implements the in-memory outstanding-task count and the
// join barrier built on top of it. Neither is persisted: both are rebuilt
// from nothing on every process start, per the queue's redelivery contract.
package tracker

import (
	"fmt"
	"sync"

	"github.com/filequeue/filequeue/golibs/errors"
)

// Tracker counts items handed out by Get but not yet confirmed by
// TaskDone, and exposes a join barrier signaled whenever that count drops
// to zero. It shares its mutex with the caller rather than owning one,
// since the facade's single queue mutex already protects everything else
// Get/TaskDone touch.
type Tracker struct {
	cond        *sync.Cond
	outstanding int64
}

// New creates a Tracker whose join barrier is parked on mu, the same mutex
// the queue facade locks around Get/TaskDone/Join.
func New(mu *sync.Mutex) *Tracker {
	return &Tracker{cond: sync.NewCond(mu)}
}

// Outstanding returns the current count. The caller must hold the shared mutex.
func (t *Tracker) Outstanding() int64 {
	return t.outstanding
}

// Handed increments the outstanding count. The caller must hold the shared mutex.
func (t *Tracker) Handed() {
	t.outstanding++
}

// Done decrements the outstanding count and, if it reaches zero, wakes
// every goroutine parked in Join. The caller must hold the shared mutex.
func (t *Tracker) Done() error {
	if t.outstanding == 0 {
		return fmt.Errorf("task_done called with no outstanding items: %w", errors.ErrInvalid)
	}
	t.outstanding--
	if t.outstanding == 0 {
		t.cond.Broadcast()
	}
	return nil
}

// Join blocks until the outstanding count reaches zero. The caller must
// hold the shared mutex; Join releases and reacquires it while waiting.
func (t *Tracker) Join() {
	for t.outstanding > 0 {
		t.cond.Wait()
	}
}
