// SPDX-License-Identifier: EPL-2.0

// Package resource issues addressable handles for encoded audio.
//
// A Registry copies the bytes it is given and keys them by a random UUID.
// Handles stay valid until Release; there is no automatic expiry, so the
// owner of a handle is responsible for releasing it.
package resource
