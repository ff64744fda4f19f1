package bytebuf

import (
	"sync"
	"sync/atomic"
)

// Anchor is the shared, reference-counted owner of the memory behind
// heap-backed ByteViews. The destroyer runs exactly once, when the last
// reference is released.
//
// A static anchor never counts and never destroys: its memory is owned by
// someone who guarantees it outlives every view.
type Anchor struct {
	refs    atomic.Int64
	destroy func()
	static  bool
}

// NewAnchor returns an anchor holding one reference, owned by the caller.
// destroy may be nil when there is nothing to give back.
func NewAnchor(destroy func()) *Anchor {
	a := &Anchor{destroy: destroy}
	a.refs.Store(1)
	return a
}

var staticAnchor = sync.OnceValue(func() *Anchor {
	return &Anchor{static: true}
})

// StaticAnchor returns the process-wide no-op anchor used for
// caller-owned immortal memory.
func StaticAnchor() *Anchor {
	return staticAnchor()
}

// Ref adds a reference.
func (a *Anchor) Ref() {
	if a.static {
		return
	}
	a.refs.Add(1)
}

// Unref drops a reference and destroys the backing memory on the last one.
func (a *Anchor) Unref() {
	if a.static {
		return
	}
	// atomic ops are sequentially consistent, so every write made through
	// another share happens before the destroyer runs
	switch n := a.refs.Add(-1); {
	case n == 0:
		if a.destroy != nil {
			a.destroy()
		}
	case n < 0:
		panic("bytebuf: anchor released too many times")
	}
}

// IsUnique reports whether the caller holds the only reference. Only
// meaningful when no other share can be created concurrently.
func (a *Anchor) IsUnique() bool {
	return !a.static && a.refs.Load() == 1
}

// Refs returns the current reference count; static anchors report 0.
func (a *Anchor) Refs() int64 {
	if a.static {
		return 0
	}
	return a.refs.Load()
}

// IsStatic reports whether a is the no-op anchor.
func (a *Anchor) IsStatic() bool {
	return a.static
}
