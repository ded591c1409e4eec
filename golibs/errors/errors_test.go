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
package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {
	assert.True(t, Is(fmt.Errorf("wrap: %w", ErrNotExist), ErrNotExist))
	assert.False(t, Is(fmt.Errorf("wrap: %s", ErrNotExist), ErrNotExist))
}

type customErr struct{ msg string }

func (e *customErr) Error() string { return e.msg }

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", &customErr{msg: "boom"})
	var ce *customErr
	assert.True(t, As(wrapped, &ce))
	assert.Equal(t, "boom", ce.msg)
	assert.False(t, As(ErrInvalid, &ce))
}
