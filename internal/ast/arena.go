/*
 * Copyright 2024 Selene Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ast

import (
    `unsafe`

    `github.com/bytedance/gopkg/lang/dirtmake`
)

const (
    _ChunkSize = 64 * 1024
)

// Arena owns the string storage of a frozen tree. Strings anchored into
// an arena share bulk chunks and die together with the tree, individual
// nodes never keep the arena alive on their own.
type Arena struct {
    used int
    head []byte
    full [][]byte
}

func NewArena() *Arena {
    return new(Arena)
}

func (self *Arena) grow(n int) {
    if self.head != nil {
        self.full = append(self.full, self.head)
    }
    if n < _ChunkSize {
        n = _ChunkSize
    }
    self.used = 0
    self.head = dirtmake.Bytes(n, n)
}

// Anchor copies s into the arena and returns the anchored copy.
func (self *Arena) Anchor(s string) string {
    if len(s) == 0 {
        return ""
    }

    /* grow a new chunk if the current one cannot fit */
    if self.head == nil || len(self.head) - self.used < len(s) {
        self.grow(len(s))
    }

    /* copy into the chunk, and view the chunk bytes as a string without
     * another allocation, the bytes are never written again */
    p := self.used
    n := copy(self.head[p:], s)
    self.used = p + n
    return mem2str(self.head[p : p + n : p + n])
}

func mem2str(v []byte) (s string) {
    return *(*string)(unsafe.Pointer(&v))
}

// Size reports the total number of bytes held by the arena.
func (self *Arena) Size() int {
    n := self.used
    for _, c := range self.full {
        n += len(c)
    }
    return n
}
