package bytebuf

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/bits"
	"unsafe"
)

// InlineCapacity is the largest payload a ByteView stores without allocating:
// three machine words minus the length byte (23 on 64-bit platforms).
const InlineCapacity = 3*(bits.UintSize/8) - 1

// A ByteView holds an immutable view of bytes.
// Small payloads live inline in the value; larger ones are a window into
// memory owned by a reference-counted Anchor.
//
// A ByteView is meant to be used as a value type. Plain assignment does not
// take a reference: use Copy to share, Move to hand over and Release to drop.
type ByteView struct {
	anchor *Anchor
	buf    []byte // window into anchor memory, nil when inline
	// read-only backing (strings) is never handed out through MutableBytes
	readOnly bool
	n        uint8
	inline   [InlineCapacity]byte
}

// Empty returns a zero-length view. It is the same as the zero value.
func Empty() ByteView {
	return ByteView{}
}

// WithLength returns a view of n uninitialized bytes. Payloads longer than
// InlineCapacity come from the configured buffer pool.
func WithLength(n int) ByteView {
	if n < 0 {
		panic(fmt.Sprintf("bytebuf: negative length %d", n))
	}
	if n <= InlineCapacity {
		return ByteView{n: uint8(n)}
	}
	a, data := allocate(n)
	return ByteView{anchor: a, buf: data}
}

// FromBytes copies b into a new view.
func FromBytes(b []byte) ByteView {
	v := WithLength(len(b))
	copy(v.MutableBytes(), b)
	return v
}

// FromSharedAnchor adopts a share of a for the bytes in b. b must lie in
// memory that a keeps alive.
func FromSharedAnchor(a *Anchor, b []byte) ByteView {
	a.Ref()
	return ByteView{anchor: a, buf: b}
}

// FromStaticBuffer wraps caller-owned memory that stays valid and unmodified
// for the lifetime of every view derived from it. Sharing it costs nothing.
func FromStaticBuffer(b []byte) ByteView {
	return FromSharedAnchor(StaticAnchor(), b)
}

// FromStaticString wraps a string constant without copying it.
func FromStaticString(s string) ByteView {
	v := FromStaticBuffer(stringBytes(s))
	v.readOnly = true
	return v
}

// FromOwnedString takes over s. Short strings are copied inline, anything
// longer is viewed in place behind a fresh anchor.
func FromOwnedString(s string) ByteView {
	if len(s) <= InlineCapacity {
		v := ByteView{n: uint8(len(s))}
		copy(v.inline[:], s)
		return v
	}
	// the garbage collector reclaims the string once the last window is gone
	return ByteView{anchor: NewAnchor(nil), buf: stringBytes(s), readOnly: true}
}

// FromOwnedBytes takes over b, which the caller must not touch afterwards.
func FromOwnedBytes(b []byte) ByteView {
	if len(b) <= InlineCapacity {
		return FromBytes(b)
	}
	return ByteView{anchor: NewAnchor(nil), buf: b}
}

func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Len returns the view's length.
func (v ByteView) Len() int {
	if v.anchor != nil {
		return len(v.buf)
	}
	return int(v.n)
}

// IsEmpty reports whether the view has no bytes.
func (v ByteView) IsEmpty() bool {
	return v.Len() == 0
}

// IsInline reports whether the payload is stored in the value itself.
func (v ByteView) IsInline() bool {
	return v.anchor == nil
}

// Anchor returns the anchor a shared view holds a reference to, or nil.
func (v ByteView) Anchor() *Anchor {
	return v.anchor
}

// Bytes returns the payload without copying shared memory. The result must
// not be modified.
func (v ByteView) Bytes() []byte {
	if v.anchor != nil {
		// capped so append never reaches bytes owned by sibling windows
		return v.buf[:len(v.buf):len(v.buf)]
	}
	return v.inline[:v.n:v.n]
}

// MutableBytes returns the payload for in-place writes, visible through every
// share of the same memory.
func (v *ByteView) MutableBytes() []byte {
	if v.readOnly {
		panic("bytebuf: view is backed by read-only memory")
	}
	if v.anchor != nil {
		return v.buf[:len(v.buf):len(v.buf)]
	}
	return v.inline[:v.n:v.n]
}

// ByteSlice returns a copy of the data as a byte slice.
func (v ByteView) ByteSlice() []byte {
	return cloneBytes(v.Bytes())
}

// String returns the data as a string, making a copy.
func (v ByteView) String() string {
	return string(v.Bytes())
}

// Copy returns another owner of the same payload: a reference for shared
// views, a byte copy for inline ones.
func (v ByteView) Copy() ByteView {
	if v.anchor != nil {
		v.anchor.Ref()
	}
	return v
}

// Move hands the receiver's reference to the result and leaves the receiver
// empty.
func (v *ByteView) Move() ByteView {
	out := *v
	*v = ByteView{}
	return out
}

// Assign makes v another owner of src's payload, dropping whatever v held.
func (v *ByteView) Assign(src ByteView) {
	if v.anchor != nil && v.anchor == src.anchor {
		v.buf = src.buf
		v.readOnly = src.readOnly
		return
	}
	v.Release()
	*v = src.Copy()
}

// Release drops v's reference and resets it to empty. Safe to repeat.
func (v *ByteView) Release() {
	if v.anchor != nil {
		v.anchor.Unref()
	}
	*v = ByteView{}
}

// Equal reports whether both views hold the same bytes.
func (v ByteView) Equal(other ByteView) bool {
	if v.Len() != other.Len() {
		return false
	}
	if v.anchor != nil && v.anchor == other.anchor &&
		unsafe.SliceData(v.buf) == unsafe.SliceData(other.buf) {
		return true
	}
	return bytes.Equal(v.Bytes(), other.Bytes())
}

// Sub returns the view of bytes [begin, end). Results that fit inline are
// copied out so they do not pin the parent allocation; longer ones share it.
func (v ByteView) Sub(begin, end int) (ByteView, error) {
	if begin < 0 || begin > end {
		return ByteView{}, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, begin, end)
	}
	if end > v.Len() {
		return ByteView{}, fmt.Errorf("%w: end %d, length %d", ErrOutOfBounds, end, v.Len())
	}

	n := end - begin
	if n <= InlineCapacity {
		sub := ByteView{n: uint8(n)}
		copy(sub.inline[:], v.Bytes()[begin:end])
		return sub, nil
	}
	// longer than InlineCapacity, so v is shared
	v.anchor.Ref()
	return ByteView{anchor: v.anchor, buf: v.buf[begin:end], readOnly: v.readOnly}, nil
}

// Merge appends other to v in place when that is cheap and reports whether it
// did. Adjacent windows of one anchor are joined, inline payloads are
// concatenated (moving to pooled memory if they outgrow InlineCapacity).
// Anything else is left alone.
func (v *ByteView) Merge(other ByteView) bool {
	if v.anchor != nil {
		if v.anchor != other.anchor {
			return false
		}
		end := uintptr(unsafe.Pointer(unsafe.SliceData(v.buf))) + uintptr(len(v.buf))
		if end != uintptr(unsafe.Pointer(unsafe.SliceData(other.buf))) ||
			cap(v.buf)-len(v.buf) < len(other.buf) {
			return false
		}
		v.buf = v.buf[:len(v.buf)+len(other.buf)]
		v.readOnly = v.readOnly || other.readOnly
		return true
	}
	if other.anchor != nil {
		return false
	}

	total := int(v.n) + int(other.n)
	if total <= InlineCapacity {
		copy(v.inline[v.n:], other.inline[:other.n])
		v.n = uint8(total)
		return true
	}
	a, data := allocate(total)
	copy(data, v.inline[:v.n])
	copy(data[v.n:], other.inline[:other.n])
	*v = ByteView{anchor: a, buf: data}
	return true
}

// Clone returns an independent copy that shares nothing with v.
func (v ByteView) Clone() ByteView {
	c := WithLength(v.Len())
	copy(c.MutableBytes(), v.Bytes())
	return c
}

// Dump returns a hex dump of the view for debugging.
func (v ByteView) Dump() string {
	return fmt.Sprintf("ByteView:%d\n%s", v.Len(), hex.Dump(v.Bytes()))
}

// DumpLog writes Dump to the package logger at debug level.
func (v ByteView) DumpLog() {
	if debugEnabled() {
		debugf("%s", v.Dump())
	}
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
