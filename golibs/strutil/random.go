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

// Package strutil contains small string helper functions shared across the repo.
package strutil

import (
	"crypto/rand"
	"encoding/base32"
)

// RandomString returns a random alpha-numeric string of the requested length.
// It is used to build unique file and directory names (temp-file suffixes,
// scratch test directories) where collisions must be practically impossible.
func RandomString(n int) string {
	if n <= 0 {
		return ""
	}

	buf := make([]byte, (n*5+7)/8)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}

	s := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
	if len(s) > n {
		s = s[:n]
	}
	return s
}
