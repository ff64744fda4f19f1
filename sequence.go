package bytebuf

import "fmt"

// InlineCount is the number of views a Sequence holds before it allocates.
const InlineCount = 8

// noCopy may be embedded into structs which must not be copied after first
// use; see https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// A Sequence is an ordered list of ByteViews with O(1) appends at the back
// and pops at either end. Adjacent views are merged on append.
//
// Elements live in base[front : front+count]. Popping from the front only
// moves the cursor, so the slot stays available for UnPopFront until the
// next compaction. The zero value is an empty sequence. A Sequence must not
// be copied and is not safe for concurrent use.
type Sequence struct {
	noCopy noCopy

	base    []ByteView
	inlined [InlineCount]ByteView
	front   int
	count   int
	length  int // sum of element lengths
}

// NewSequence returns an empty sequence backed by its inline array.
func NewSequence() *Sequence {
	s := &Sequence{}
	s.init()
	return s
}

func (s *Sequence) init() {
	if s.base == nil {
		s.base = s.inlined[:]
	}
}

// Count returns the number of views.
func (s *Sequence) Count() int {
	return s.count
}

// Len returns the total number of bytes across all views.
func (s *Sequence) Len() int {
	return s.length
}

// IsEmpty reports whether the sequence holds no views.
func (s *Sequence) IsEmpty() bool {
	return s.count == 0
}

// Capacity returns the number of slots in the backing array.
func (s *Sequence) Capacity() int {
	if s.base == nil {
		return InlineCount
	}
	return len(s.base)
}

// Add appends v. If v continues the last view it is merged into it and the
// count does not change. The sequence takes its own share; the caller keeps v.
func (s *Sequence) Add(v ByteView) {
	s.init()
	if s.count > 0 {
		back := &s.base[s.front+s.count-1]
		if back.Merge(v) {
			s.length += v.Len()
			return
		}
	}

	s.ensureCapacity()
	s.base[s.front+s.count] = v.Copy()
	s.count++
	s.length += v.Len()
}

// AddSequence appends every view of other in order.
func (s *Sequence) AddSequence(other *Sequence) {
	views := other.base[other.front : other.front+other.count]
	if other == s {
		views = append([]ByteView(nil), views...)
	}
	for _, v := range views {
		s.Add(v)
	}
}

// PopFront removes the first view and hands it to the caller.
func (s *Sequence) PopFront() (ByteView, error) {
	if s.count == 0 {
		return ByteView{}, fmt.Errorf("%w: pop front", ErrEmpty)
	}
	v := s.base[s.front].Move()
	s.front++ // 只移动游标，不搬移剩余元素
	s.count--
	s.length -= v.Len()
	return v, nil
}

// UnPopFront puts v in front of the first view, reusing the slot freed by an
// earlier PopFront. It returns false when there is no such slot. v need not be
// the view that was popped; the sequence takes its own share.
func (s *Sequence) UnPopFront(v ByteView) bool {
	if s.front == 0 {
		return false
	}
	s.front--
	s.base[s.front] = v.Copy()
	s.count++
	s.length += v.Len()
	return true
}

// PopBack removes the last view and hands it to the caller.
func (s *Sequence) PopBack() (ByteView, error) {
	if s.count == 0 {
		return ByteView{}, fmt.Errorf("%w: pop back", ErrEmpty)
	}
	v := s.base[s.front+s.count-1].Move()
	s.count--
	s.length -= v.Len()
	return v, nil
}

// GetAt returns a share of the view at index i.
func (s *Sequence) GetAt(i int) (ByteView, error) {
	if i < 0 || i >= s.count {
		return ByteView{}, fmt.Errorf("%w: index %d, count %d", ErrOutOfBounds, i, s.count)
	}
	return s.base[s.front+i].Copy(), nil
}

// Range calls fn for each view in order until fn returns false. The views
// are borrowed: fn must not Release them or keep them past the call.
func (s *Sequence) Range(fn func(i int, v ByteView) bool) {
	for i := 0; i < s.count; i++ {
		if !fn(i, s.base[s.front+i]) {
			return
		}
	}
}

// Bytes returns the concatenation of all views as a new slice.
func (s *Sequence) Bytes() []byte {
	out := make([]byte, 0, s.length)
	s.Range(func(_ int, v ByteView) bool {
		out = append(out, v.Bytes()...)
		return true
	})
	return out
}

// Reset releases every view and returns the sequence to its inline array.
func (s *Sequence) Reset() {
	for i := s.front; i < s.front+s.count; i++ {
		s.base[i].Release()
	}
	clear(s.inlined[:])
	s.base = s.inlined[:]
	s.front, s.count, s.length = 0, 0, 0
}

type capacityPlan int

const (
	keepCapacity capacityPlan = iota
	compactCapacity
	growCapacity
)

// planCapacity decides how to make room for one more view at the back.
// Slots freed by PopFront are reclaimed before allocating.
func planCapacity(front, count, capacity int) capacityPlan {
	switch {
	case front+count < capacity:
		return keepCapacity
	case front > 0:
		return compactCapacity
	default:
		return growCapacity
	}
}

// grow a backing array by half; needs InlineCount > 1
func grownCapacity(capacity int) int {
	return 3 * capacity / 2
}

func (s *Sequence) ensureCapacity() {
	if s.count == 0 {
		s.front = 0
		return
	}

	switch planCapacity(s.front, s.count, len(s.base)) {
	case compactCapacity:
		// 前面有空位时先挪动元素，不重新分配
		copy(s.base, s.base[s.front:s.front+s.count])
		clear(s.base[s.count : s.front+s.count])
		debugf("sequence compacted: %d views moved back %d slots", s.count, s.front)
		s.front = 0
	case growCapacity:
		next := make([]ByteView, grownCapacity(len(s.base)))
		copy(next, s.base[s.front:s.front+s.count])
		// the old array must not keep references alive
		clear(s.base)
		debugf("sequence grown: capacity %d -> %d", len(s.base), len(next))
		s.base = next
		s.front = 0
	}
}
