package bytebuf

import (
	"sync/atomic"

	"google.golang.org/grpc/mem"
)

type poolHolder struct{ mem.BufferPool }

var bufferPool atomic.Pointer[poolHolder]

func init() {
	bufferPool.Store(&poolHolder{mem.DefaultBufferPool()})
}

// SetBufferPool sets the pool heap-backed views allocate from. Views
// allocated before the call return their memory to the pool they came from.
// A nil pool restores mem.DefaultBufferPool.
func SetBufferPool(p mem.BufferPool) {
	if p == nil {
		p = mem.DefaultBufferPool()
	}
	bufferPool.Store(&poolHolder{p})
}

// allocate returns n bytes of pooled memory and an anchor that puts them
// back once the last share is released.
func allocate(n int) (*Anchor, []byte) {
	pool := bufferPool.Load().BufferPool
	buf := pool.Get(n)
	data := (*buf)[:n]
	return NewAnchor(func() { pool.Put(buf) }), data
}
