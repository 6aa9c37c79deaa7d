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

package opts

// Level is the optimization level. Each level's active pass set is a
// superset of the level below it.
type Level uint8

const (
	LevelNone Level = iota
	LevelMinimal
	LevelModerate
	LevelAggressive
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelMinimal:
		return "minimal"
	case LevelModerate:
		return "moderate"
	case LevelAggressive:
		return "aggressive"
	default:
		return "invalid"
	}
}

// Options is the configuration surface of the optimizer. It is filled
// in by the caller; nothing here is read from files, environment
// variables or command-line arguments.
type Options struct {
	Level           Level
	NoParallel      bool
	NoTreeShaking   bool
	NoScopeHoisting bool
	Profile         bool
	CheckInvariants bool
	MaxRounds       int
}

// GetDefaultOptions returns the baseline configuration.
func GetDefaultOptions() Options {
	return Options{
		Level:     LevelModerate,
		MaxRounds: MaxRounds,
	}
}
