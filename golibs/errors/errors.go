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

// Package errors contains the small, fixed vocabulary of sentinel errors
// shared by every component of the engine. Components never invent new
// error values for conditions already covered here; they wrap one of
// these with fmt.Errorf("...: %w", ...) to add context.
package errors

import "errors"

var (
	// ErrNotExist is returned when a file, chunk or directory expected to
	// exist is missing.
	ErrNotExist = errors.New("not found")
	// ErrExist is returned when something that must not already exist does.
	ErrExist = errors.New("already exists")
	// ErrInvalid marks a programming error or invalid argument.
	ErrInvalid = errors.New("invalid argument")
	// ErrClosed is returned by any operation on an already-closed object.
	ErrClosed = errors.New("closed")
	// ErrExhausted is returned when a resource limit (queue capacity, open
	// file descriptors, chunk capacity) is hit.
	ErrExhausted = errors.New("exhausted")
	// ErrInternal wraps unexpected, otherwise-unclassified failures.
	ErrInternal = errors.New("internal error")
	// ErrDataLoss marks on-disk corruption that could not be safely repaired.
	ErrDataLoss = errors.New("data loss")
	// ErrConflict is returned for configuration mismatches and double-open
	// attempts on the same queue directory.
	ErrConflict = errors.New("conflict")
	// ErrTimeout is returned when a blocking call's deadline elapses.
	ErrTimeout = errors.New("timeout")
)

// Is is a thin re-export of the standard library's errors.Is, kept so
// callers only need to import this package's error vocabulary.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a thin re-export of the standard library's errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
