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
    `strings`
    `sync`
    `testing`

    `github.com/stretchr/testify/require`
)

func TestStringTable_Lookup(t *testing.T) {
    st := NewStringTable([]string { "print", "require" })
    require.Equal(t, "print", st.Lookup("print"))
    require.Equal(t, "unseen", st.Lookup("unseen"))
}

func TestStringTable_RefCount(t *testing.T) {
    st := NewStringTable([]string { "a" })
    st.Retain()
    st.Release()
    st.Release()
    require.PanicsWithValue(t, "selene: string table over-released", func() { st.Release() })
}

func TestStringTable_ConcurrentLookup(t *testing.T) {
    st := NewStringTable([]string { "x", "y", "z" })
    var wg sync.WaitGroup
    for i := 0; i < 8; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for j := 0; j < 1000; j++ {
                require.Equal(t, "x", st.Lookup("x"))
            }
        }()
    }
    wg.Wait()
}

func TestArena_Anchor(t *testing.T) {
    a := NewArena()
    v := a.Anchor("hello")
    require.Equal(t, "hello", v)
    require.Equal(t, "", a.Anchor(""))

    /* spans a chunk boundary */
    big := strings.Repeat("q", _ChunkSize + 17)
    require.Equal(t, big, a.Anchor(big))
    require.GreaterOrEqual(t, a.Size(), len(big) + len(v))
}
