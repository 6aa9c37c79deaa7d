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
    `sync/atomic`
)

// StringTable is a read-only interned-string table shared by every
// worker during the parallel phase. It is populated before the workers
// start and reference-counted so the backing map can be dropped once
// the last worker releases it.
type StringTable struct {
    refs int64
    tab  map[string]string
}

// NewStringTable builds a table over the given seed strings with an
// initial reference count of one, held by the builder.
func NewStringTable(seed []string) *StringTable {
    t := &StringTable {
        refs: 1,
        tab : make(map[string]string, len(seed)),
    }
    for _, s := range seed {
        t.tab[s] = s
    }
    return t
}

// Retain takes one more reference to the table.
func (self *StringTable) Retain() *StringTable {
    atomic.AddInt64(&self.refs, 1)
    return self
}

// Release drops one reference, freeing the table when the count hits
// zero. Releasing more times than retained is a defect.
func (self *StringTable) Release() {
    if n := atomic.AddInt64(&self.refs, -1); n == 0 {
        self.tab = nil
    } else if n < 0 {
        panic("selene: string table over-released")
    }
}

// Lookup returns the interned copy of s, or s itself when it was never
// interned. Lookup never mutates the table, so it is safe to call from
// any number of workers concurrently.
func (self *StringTable) Lookup(s string) string {
    if v, ok := self.tab[s]; ok {
        return v
    } else {
        return s
    }
}
