// SPDX-License-Identifier: EPL-2.0

package resource

import "errors"

var (
	ErrNotFound = errors.New("resource not found")
	ErrEmptyID  = errors.New("empty resource id")
)
