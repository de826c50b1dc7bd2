// Package securebuf wraps sensitive byte slices with best-effort mlock and
// guaranteed zeroing on release.
package securebuf

import (
	"runtime"
	"sync"
)

// Buf is a wrapper for sensitive byte slices that provides secure memory
// handling via mlock (where supported by the OS) and explicit zeroing.
type Buf struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// New allocates a Buf of size bytes, locking the backing memory if the
// platform supports it.
func New(size int) *Buf {
	data := make([]byte, size)

	b := &Buf{data: data}
	b.locked = mlock(data)

	runtime.SetFinalizer(b, func(b *Buf) { b.Destroy() })

	return b
}

// FromBytes copies src into a new locked Buf. The caller is still
// responsible for zeroing src itself.
func FromBytes(src []byte) *Buf {
	b := New(len(src))
	copy(b.data, src)
	return b
}

// Bytes returns the underlying slice. The returned slice aliases the Buf's
// memory and must not be retained past a call to Destroy.
func (b *Buf) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// Locked reports whether the backing memory is mlocked.
func (b *Buf) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}

// Len returns the length of the buffer, or 0 once destroyed.
func (b *Buf) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Destroy zeros and unlocks the memory. Safe to call multiple times.
func (b *Buf) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.data == nil {
		return
	}

	for i := range b.data {
		b.data[i] = 0
	}

	if b.locked {
		munlock(b.data)
		b.locked = false
	}

	b.data = nil
	runtime.SetFinalizer(b, nil)
}
