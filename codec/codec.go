// Package codec lets gRPC carry bytebuf values directly.
//
// Codec is registered under Name. It marshals *bytebuf.Sequence and
// bytebuf.ByteView values into one pooled buffer per view and falls back to
// the protobuf codec for everything else, so a service can mix raw buffers
// and generated messages on the same connection.
package codec

import (
	"fmt"

	"bytebuf"

	"google.golang.org/grpc/encoding"
	grpcproto "google.golang.org/grpc/encoding/proto"
	"google.golang.org/grpc/mem"
)

// Name is the content-subtype the codec is registered under.
const Name = "bytebuf"

func init() {
	encoding.RegisterCodecV2(Codec{})
}

// Codec implements encoding.CodecV2.
type Codec struct {
	// Pool backs marshaled buffers. nil means mem.DefaultBufferPool.
	Pool mem.BufferPool
}

var _ encoding.CodecV2 = Codec{}

// Name returns Name.
func (Codec) Name() string {
	return Name
}

// Marshal copies each view into its own buffer; gRPC frees them once written.
func (c Codec) Marshal(v any) (mem.BufferSlice, error) {
	switch m := v.(type) {
	case *bytebuf.Sequence:
		if m == nil {
			return nil, errNil(v)
		}
		out := make(mem.BufferSlice, 0, m.Count())
		m.Range(func(_ int, view bytebuf.ByteView) bool {
			if !view.IsEmpty() {
				out = append(out, c.copyBuffer(view.Bytes()))
			}
			return true
		})
		return out, nil
	case *bytebuf.ByteView:
		if m == nil {
			return nil, errNil(v)
		}
		return c.marshalView(*m), nil
	case bytebuf.ByteView:
		return c.marshalView(m), nil
	}
	return fallback().Marshal(v)
}

// Unmarshal copies data out: gRPC recycles it as soon as Unmarshal returns.
// Like a proto message, the target is reset first: a Sequence ends up with
// one view per buffer and a ByteView is replaced.
func (c Codec) Unmarshal(data mem.BufferSlice, v any) error {
	switch m := v.(type) {
	case *bytebuf.Sequence:
		if m == nil {
			return errNil(v)
		}
		m.Reset()
		for _, b := range data {
			view := bytebuf.FromBytes(b.ReadOnlyData())
			m.Add(view)
			view.Release()
		}
		return nil
	case *bytebuf.ByteView:
		if m == nil {
			return errNil(v)
		}
		m.Release()
		*m = bytebuf.WithLength(data.Len())
		data.CopyTo(m.MutableBytes())
		return nil
	}
	return fallback().Unmarshal(data, v)
}

func (c Codec) marshalView(v bytebuf.ByteView) mem.BufferSlice {
	if v.IsEmpty() {
		return nil
	}
	return mem.BufferSlice{c.copyBuffer(v.Bytes())}
}

func (c Codec) copyBuffer(b []byte) mem.Buffer {
	pool := c.Pool
	if pool == nil {
		pool = mem.DefaultBufferPool()
	}
	buf := pool.Get(len(b))
	copy(*buf, b)
	return mem.NewBuffer(buf, pool)
}

func errNil(v any) error {
	return fmt.Errorf("codec: nil %T", v)
}

func fallback() encoding.CodecV2 {
	c := encoding.GetCodecV2(grpcproto.Name)
	if c == nil {
		panic(fmt.Sprintf("codec: %q codec not registered", grpcproto.Name))
	}
	return c
}
