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

import "encoding/json"

// JSONSerializer encodes items with the standard library's JSON codec.
type JSONSerializer[T any] struct{}

// NewJSON returns a JSONSerializer[T].
func NewJSON[T any]() JSONSerializer[T] {
	return JSONSerializer[T]{}
}

func (JSONSerializer[T]) Name() string    { return "json" }
func (JSONSerializer[T]) Version() uint32 { return 1 }

func (JSONSerializer[T]) Encode(v T) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer[T]) Decode(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}
