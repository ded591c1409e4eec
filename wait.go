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
	"sync"
	"time"

	"github.com/filequeue/filequeue/golibs/timeout"
)

// waitUntil parks on cond, same as cond.Wait(), but also wakes once
// deadline passes. sync.Cond has no native timeout, so a watcher is
// scheduled to broadcast at the deadline; it is cancelled once this call
// returns by whichever path got there first. Returns true if the deadline
// was the reason the wait returned (the caller still must re-check its
// condition: a real signal and a timeout can race).
func waitUntil(cond *sync.Cond, deadline time.Time) bool {
	fu := timeout.Call(func() {
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()
	}, time.Until(deadline))
	defer fu.Cancel()

	cond.Wait()
	return !time.Now().Before(deadline)
}
