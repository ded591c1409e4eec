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

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filequeue/filequeue/golibs/errors"
)

func TestAcquire_SecondOpenConflicts(t *testing.T) {
	dir := t.TempDir()

	id1, canon1, err := Acquire(dir)
	require.NoError(t, err)
	defer Release(canon1)

	_, _, err = Acquire(dir)
	assert.ErrorIs(t, err, errors.ErrConflict)
	assert.NotEqual(t, id1.String(), "")
}

func TestAcquire_DifferentPathsDoNotConflict(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()

	_, canon1, err := Acquire(dir1)
	require.NoError(t, err)
	defer Release(canon1)

	_, canon2, err := Acquire(dir2)
	require.NoError(t, err)
	defer Release(canon2)

	assert.NotEqual(t, canon1, canon2)
}

func TestAcquire_ReleaseThenReacquire(t *testing.T) {
	dir := t.TempDir()

	_, canon, err := Acquire(dir)
	require.NoError(t, err)
	Release(canon)

	_, canon2, err := Acquire(dir)
	require.NoError(t, err)
	defer Release(canon2)
	assert.Equal(t, canon, canon2)
}

func TestAcquire_DotPathsCanonicalizeToSameEntry(t *testing.T) {
	dir := t.TempDir()

	_, canon1, err := Acquire(dir)
	require.NoError(t, err)
	defer Release(canon1)

	_, _, err = Acquire(dir + "/.")
	assert.ErrorIs(t, err, errors.ErrConflict)
}
