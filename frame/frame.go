// Package frame splits a bytebuf.Sequence into length-delimited frames.
//
// Each frame is a protobuf varint holding the payload length, followed by the
// payload. Frames may straddle any number of views; Next only consumes a frame
// once all of it has arrived.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"bytebuf"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrIncomplete means the sequence does not yet hold a whole frame. Nothing
// was consumed.
var ErrIncomplete = errors.New("frame: incomplete")

// ErrMalformed means the length prefix is not a valid varint.
var ErrMalformed = errors.New("frame: malformed length prefix")

// Append writes payload to seq as one frame. seq takes its own share of
// payload.
func Append(seq *bytebuf.Sequence, payload bytebuf.ByteView) {
	var scratch [binary.MaxVarintLen64]byte
	prefix := protowire.AppendVarint(scratch[:0], uint64(payload.Len()))
	seq.Add(bytebuf.FromBytes(prefix))
	seq.Add(payload)
}

// AppendBytes copies b into seq as one frame.
func AppendBytes(seq *bytebuf.Sequence, b []byte) {
	payload := bytebuf.FromBytes(b)
	Append(seq, payload)
	payload.Release()
}

// Next removes the first frame from seq and returns its payload. A payload
// lying inside one view is returned without copying.
func Next(seq *bytebuf.Sequence) (bytebuf.ByteView, error) {
	hdr := peek(seq, binary.MaxVarintLen64)
	size, n := protowire.ConsumeVarint(hdr)
	if n < 0 {
		err := protowire.ParseError(n)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return bytebuf.ByteView{}, ErrIncomplete
		}
		return bytebuf.ByteView{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if size > uint64(math.MaxInt-n) {
		return bytebuf.ByteView{}, fmt.Errorf("%w: length %d", ErrMalformed, size)
	}
	if seq.Len() < n+int(size) {
		return bytebuf.ByteView{}, ErrIncomplete
	}

	prefix, err := take(seq, n)
	if err != nil {
		return bytebuf.ByteView{}, err
	}
	prefix.Release()
	return take(seq, int(size))
}

// peek copies up to n bytes from the front of seq without consuming them.
func peek(seq *bytebuf.Sequence, n int) []byte {
	out := make([]byte, 0, n)
	seq.Range(func(_ int, v bytebuf.ByteView) bool {
		b := v.Bytes()
		if rem := n - len(out); len(b) > rem {
			b = b[:rem]
		}
		out = append(out, b...)
		return len(out) < n
	})
	return out
}

// take pops exactly k bytes off the front of seq. The unread tail of the last
// view goes back with UnPopFront.
func take(seq *bytebuf.Sequence, k int) (bytebuf.ByteView, error) {
	var out bytebuf.ByteView
	for k > 0 {
		v, err := seq.PopFront()
		if err != nil {
			out.Release()
			return bytebuf.ByteView{}, err
		}
		if v.Len() > k {
			head, err := v.Sub(0, k)
			if err != nil {
				v.Release()
				out.Release()
				return bytebuf.ByteView{}, err
			}
			tail, err := v.Sub(k, v.Len())
			if err != nil {
				head.Release()
				v.Release()
				out.Release()
				return bytebuf.ByteView{}, err
			}
			// the slot just popped is always free
			seq.UnPopFront(tail)
			tail.Release()
			v.Release()
			v = head
		}
		k -= v.Len()
		out = join(out, v)
	}
	return out, nil
}

// join appends v to out, consuming both.
func join(out, v bytebuf.ByteView) bytebuf.ByteView {
	if out.IsEmpty() {
		out.Release()
		return v
	}
	if out.Merge(v) {
		v.Release()
		return out
	}
	joined := bytebuf.WithLength(out.Len() + v.Len())
	b := joined.MutableBytes()
	copy(b, out.Bytes())
	copy(b[out.Len():], v.Bytes())
	out.Release()
	v.Release()
	return joined
}
