package bytebuf

import (
	"sync"
	"testing"
)

// countingPool hands out fresh buffers and counts what comes back.
type countingPool struct {
	mu   sync.Mutex
	gets int
	puts int
}

func (p *countingPool) Get(length int) *[]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets++
	b := make([]byte, length)
	return &b
}

func (p *countingPool) Put(*[]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.puts++
}

func (p *countingPool) counts() (gets, puts int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gets, p.puts
}

func useCountingPool(t *testing.T) *countingPool {
	t.Helper()
	p := &countingPool{}
	SetBufferPool(p)
	t.Cleanup(func() { SetBufferPool(nil) })
	return p
}
