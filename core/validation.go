// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateKey checks that key is usable as a storage key.
//
// Validation rules:
//   - key must not be empty
//   - key must not start or end with "/"
//   - segments must not be empty or start with "."
//   - key must not contain a backslash or NUL byte
//
// Backends rely on these rules to keep filesystem paths inside their root.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidArgument)
	}

	if strings.ContainsAny(key, "\\\x00") {
		return fmt.Errorf("%w: key %q contains an illegal character", ErrInvalidArgument, key)
	}

	for _, segment := range strings.Split(key, KeySeparator) {
		switch {
		case segment == "":
			return fmt.Errorf("%w: key %q has an empty segment", ErrInvalidArgument, key)
		case segment == "." || segment == "..":
			return fmt.Errorf("%w: key %q has a relative segment", ErrInvalidArgument, key)
		case strings.HasPrefix(segment, "."):
			// Dot names are reserved for backend bookkeeping such as temp files.
			return fmt.Errorf("%w: key %q has a segment starting with a dot", ErrInvalidArgument, key)
		}
	}

	return nil
}

// RequireNonBlank returns ErrInvalidArgument when value is empty or whitespace.
func RequireNonBlank(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s cannot be blank", ErrInvalidArgument, field)
	}
	return nil
}

// RequirePositive returns ErrInvalidArgument when value is zero or negative.
func RequirePositive(field string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidArgument, field, value)
	}
	return nil
}
