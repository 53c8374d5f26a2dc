// SPDX-License-Identifier: EPL-2.0

package resource

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MIMEWave is the media type tag for documents produced by formats/wav.
const MIMEWave = "audio/wav"

// Handle addresses bytes held by a Registry until Release.
type Handle struct {
	ID      string
	MIME    string
	Size    int
	Created time.Time
}

// Observer is notified after handles are issued or released.
// *metrics.Metrics satisfies it.
type Observer interface {
	HandleIssued(sizeBytes int)
	HandleReleased(sizeBytes int)
}

type entry struct {
	handle Handle
	data   []byte
}

// Registry owns issued byte payloads. It is safe for concurrent use.
// Handles never expire; callers release them explicitly.
type Registry struct {
	entries  map[string]entry
	observer Observer
	now      func() time.Time

	mtx sync.RWMutex
}

// NewRegistry returns an empty registry. observer may be nil.
func NewRegistry(observer Observer) *Registry {
	return &Registry{
		entries:  make(map[string]entry),
		observer: observer,
		now:      time.Now,
	}
}

// Issue copies data and registers it under a fresh random ID.
// Identical payloads get distinct handles.
func (r *Registry) Issue(data []byte, mime string) Handle {
	h := Handle{
		ID:      uuid.NewString(),
		MIME:    mime,
		Size:    len(data),
		Created: r.now(),
	}

	e := entry{handle: h, data: append([]byte(nil), data...)}

	r.mtx.Lock()
	r.entries[h.ID] = e
	r.mtx.Unlock()

	if r.observer != nil {
		r.observer.HandleIssued(h.Size)
	}

	return h
}

// Open returns the bytes behind id. The slice is shared and must not be modified.
func (r *Registry) Open(id string) ([]byte, Handle, error) {
	if id == "" {
		return nil, Handle{}, ErrEmptyID
	}

	r.mtx.RLock()
	e, ok := r.entries[id]
	r.mtx.RUnlock()

	if !ok {
		return nil, Handle{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return e.data, e.handle, nil
}

// Release drops id. Releasing an unknown or already released id returns ErrNotFound.
func (r *Registry) Release(id string) error {
	if id == "" {
		return ErrEmptyID
	}

	r.mtx.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mtx.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if r.observer != nil {
		r.observer.HandleReleased(e.handle.Size)
	}

	return nil
}

// Len is the number of live handles.
func (r *Registry) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return len(r.entries)
}
