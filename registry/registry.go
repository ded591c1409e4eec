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

// Package registry enforces at-most-one open Queue per canonicalized
// directory path within a process, so two in-process instances can never
// race each other over the same info file.
package registry

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/filequeue/filequeue/golibs/errors"
	"github.com/google/uuid"
)

var open sync.Map // canonical path (string) -> uuid.UUID

// Acquire registers path as open and returns the instance id it was
// registered under. It fails with ErrConflict if the canonicalized path is
// already registered by another open Queue in this process.
func Acquire(path string) (uuid.UUID, string, error) {
	canon, err := canonicalize(path)
	if err != nil {
		return uuid.UUID{}, "", err
	}

	id := uuid.New()
	if _, loaded := open.LoadOrStore(canon, id); loaded {
		return uuid.UUID{}, "", fmt.Errorf("queue directory %s is already open in this process: %w", canon, errors.ErrConflict)
	}
	return id, canon, nil
}

// Release deregisters a canonicalized path previously returned by Acquire.
func Release(canon string) {
	open.Delete(canon)
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("could not resolve absolute path for %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}
