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

package selene

import (
	"strings"
)

// DefectError reports an internal inconsistency detected during
// optimization: a non-total tree move, a pass lying about changing
// the tree, or a value-import cycle surviving past the checker. It
// always indicates a compiler bug, never bad user input.
type DefectError struct {
	Message string
}

func (self *DefectError) Error() string {
	return self.Message
}

// trapDefects converts optimizer defect panics into *DefectError.
// Foreign panics are re-raised untouched.
func trapDefects(err *error) {
	switch v := recover().(type) {
	case nil:
		/* no panic */
	case string:
		if strings.HasPrefix(v, "selene: ") {
			*err = &DefectError{Message: v}
		} else {
			panic(v)
		}
	default:
		panic(v)
	}
}
