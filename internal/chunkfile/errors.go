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
	"errors"
	"fmt"

	golibserrors "github.com/filequeue/filequeue/golibs/errors"
)

// ErrTornRecord is returned by ReadAt when a sealed (non-head) chunk holds
// a record whose length prefix claims more bytes than the file has. A
// sealed chunk is never written to again, so this is unrecoverable data
// loss, not a pending write.
var ErrTornRecord = fmt.Errorf("chunkfile: torn record: %w", golibserrors.ErrDataLoss)

// ErrIncomplete is returned by ReadAt when the record at the requested
// position in the live head chunk is incomplete: the process most likely
// crashed mid-write. Unlike ErrTornRecord this is not data loss - the bytes
// were never durably confirmed, so the caller treats it as "nothing more
// to read yet" rather than surfacing an error.
var ErrIncomplete = errors.New("chunkfile: incomplete head record")
