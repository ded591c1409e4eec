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

package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int
	Name string
}

func TestJSONSerializer_RoundTrip(t *testing.T) {
	s := NewJSON[record]()
	assert.Equal(t, "json", s.Name())
	assert.Equal(t, uint32(1), s.Version())

	in := record{ID: 42, Name: "hello"}
	buf, err := s.Encode(in)
	require.NoError(t, err)

	out, err := s.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestJSONSerializer_DecodeInvalid(t *testing.T) {
	s := NewJSON[record]()
	_, err := s.Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestMsgpackSerializer_RoundTrip(t *testing.T) {
	s := NewMsgpack[record]()
	assert.Equal(t, "msgpack", s.Name())
	assert.Equal(t, uint32(1), s.Version())

	in := record{ID: 7, Name: "world"}
	buf, err := s.Encode(in)
	require.NoError(t, err)

	out, err := s.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSerializers_DistinctNames(t *testing.T) {
	assert.NotEqual(t, NewJSON[record]().Name(), NewMsgpack[record]().Name())
}
