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

import "github.com/vmihailenco/msgpack/v5"

// MsgpackSerializer encodes items with a compact binary codec, a smaller
// and faster alternative to JSONSerializer for items with tight payload
// budgets or high put/get throughput.
type MsgpackSerializer[T any] struct{}

// NewMsgpack returns a MsgpackSerializer[T].
func NewMsgpack[T any]() MsgpackSerializer[T] {
	return MsgpackSerializer[T]{}
}

func (MsgpackSerializer[T]) Name() string    { return "msgpack" }
func (MsgpackSerializer[T]) Version() uint32 { return 1 }

func (MsgpackSerializer[T]) Encode(v T) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackSerializer[T]) Decode(b []byte) (T, error) {
	var v T
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
