// SPDX-License-Identifier: EPL-2.0

package resource

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingObserver struct {
	mu       sync.Mutex
	issued   int
	released int
	bytes    int
}

func (o *countingObserver) HandleIssued(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.issued++
	o.bytes += n
}

func (o *countingObserver) HandleReleased(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.released++
	o.bytes -= n
}

func TestRegistry_IssueOpen(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := NewRegistry(nil)
	r.now = func() time.Time { return created }

	data := []byte("RIFF....WAVE")
	h := r.Issue(data, MIMEWave)

	if h.ID == "" || h.MIME != MIMEWave || h.Size != len(data) || !h.Created.Equal(created) {
		t.Fatalf("Issue = %+v", h)
	}

	got, gotHandle, err := r.Open(h.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if !bytes.Equal(got, data) || gotHandle != h {
		t.Errorf("Open = %q %+v, want %q %+v", got, gotHandle, data, h)
	}
}

func TestRegistry_IssueCopies(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	data := []byte{1, 2, 3}
	h := r.Issue(data, MIMEWave)
	data[0] = 9

	got, _, err := r.Open(h.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got[0] != 1 {
		t.Error("registry aliases the caller's slice")
	}
}

func TestRegistry_DistinctHandles(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	data := []byte("same bytes")

	a := r.Issue(data, MIMEWave)
	b := r.Issue(data, MIMEWave)

	if a.ID == b.ID {
		t.Fatalf("identical payloads share ID %s", a.ID)
	}

	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
}

func TestRegistry_Release(t *testing.T) {
	t.Parallel()

	obs := &countingObserver{}
	r := NewRegistry(obs)
	h := r.Issue(make([]byte, 48), MIMEWave)

	if err := r.Release(h.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}

	if _, _, err := r.Open(h.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open after Release error = %v, want ErrNotFound", err)
	}

	if err := r.Release(h.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Release error = %v, want ErrNotFound", err)
	}

	if obs.issued != 1 || obs.released != 1 || obs.bytes != 0 {
		t.Errorf("observer = %d issued, %d released, %d bytes", obs.issued, obs.released, obs.bytes)
	}
}

func TestRegistry_EmptyID(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)

	if _, _, err := r.Open(""); !errors.Is(err, ErrEmptyID) {
		t.Errorf("Open(\"\") error = %v, want ErrEmptyID", err)
	}

	if err := r.Release(""); !errors.Is(err, ErrEmptyID) {
		t.Errorf("Release(\"\") error = %v, want ErrEmptyID", err)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	const workers = 16
	const perWorker = 50

	obs := &countingObserver{}
	r := NewRegistry(obs)

	var wg sync.WaitGroup
	ids := make(chan string, workers*perWorker)

	for range workers {
		wg.Go(func() {
			for range perWorker {
				h := r.Issue([]byte{0}, MIMEWave)
				ids <- h.ID
				if _, _, err := r.Open(h.ID); err != nil {
					t.Errorf("Open: %v", err)
				}
			}
		})
	}

	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate ID %s", id)
		}
		seen[id] = true
	}

	if r.Len() != workers*perWorker || obs.issued != workers*perWorker {
		t.Errorf("Len = %d, observer issued = %d, want %d", r.Len(), obs.issued, workers*perWorker)
	}
}

func BenchmarkRegistry_Issue(b *testing.B) {
	r := NewRegistry(nil)
	data := make([]byte, 48044)

	b.ReportAllocs()
	for b.Loop() {
		h := r.Issue(data, MIMEWave)
		_ = r.Release(h.ID)
	}
}
