package codec

import (
	"bytes"
	"testing"

	"bytebuf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/mem"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestRegistered(t *testing.T) {
	c := encoding.GetCodecV2(Name)
	require.NotNil(t, c)
	assert.Equal(t, Name, c.Name())
}

func TestSequenceRoundTrip(t *testing.T) {
	src := bytebuf.NewSequence()
	src.Add(bytebuf.FromBytes([]byte("head")))
	src.Add(bytebuf.FromBytes(bytes.Repeat([]byte("m"), 2000)))
	src.Add(bytebuf.FromBytes(bytes.Repeat([]byte("t"), 64)))

	var c Codec
	out, err := c.Marshal(src)
	require.NoError(t, err)
	defer out.Free()
	assert.Len(t, out, src.Count())
	assert.Equal(t, src.Len(), out.Len())
	assert.Equal(t, src.Bytes(), out.Materialize())

	dst := bytebuf.NewSequence()
	require.NoError(t, c.Unmarshal(out, dst))
	assert.Equal(t, src.Bytes(), dst.Bytes())
	assert.Equal(t, src.Count(), dst.Count())
}

func TestByteViewRoundTrip(t *testing.T) {
	var c Codec
	v := bytebuf.FromBytes(bytes.Repeat([]byte{7}, 100))

	out, err := c.Marshal(v)
	require.NoError(t, err)
	defer out.Free()

	got := bytebuf.FromBytes([]byte("replaced"))
	require.NoError(t, c.Unmarshal(out, &got))
	assert.True(t, got.Equal(v))

	out, err = c.Marshal(&got)
	require.NoError(t, err)
	assert.Equal(t, v.Bytes(), out.Materialize())
	out.Free()

	empty, err := c.Marshal(bytebuf.Empty())
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestProtoFallback(t *testing.T) {
	var c Codec
	msg := wrapperspb.Bytes([]byte("payload"))

	out, err := c.Marshal(msg)
	require.NoError(t, err)
	defer out.Free()

	got := &wrapperspb.BytesValue{}
	require.NoError(t, c.Unmarshal(out, got))
	assert.True(t, proto.Equal(msg, got))

	_, err = c.Marshal(42)
	assert.Error(t, err)
}

func TestUnmarshalReplacesSequence(t *testing.T) {
	var c Codec
	first := bytebuf.NewSequence()
	first.Add(bytebuf.FromBytes(bytes.Repeat([]byte("a"), 40)))
	second := bytebuf.NewSequence()
	second.Add(bytebuf.FromBytes([]byte("second payload")))

	dst := bytebuf.NewSequence()
	for _, src := range []*bytebuf.Sequence{first, second} {
		out, err := c.Marshal(src)
		require.NoError(t, err)
		require.NoError(t, c.Unmarshal(out, dst))
		out.Free()
	}
	assert.Equal(t, []byte("second payload"), dst.Bytes())
	assert.Equal(t, 1, dst.Count())
}

func TestNilTargets(t *testing.T) {
	var c Codec
	_, err := c.Marshal((*bytebuf.ByteView)(nil))
	assert.Error(t, err)
	_, err = c.Marshal((*bytebuf.Sequence)(nil))
	assert.Error(t, err)

	data := mem.BufferSlice{mem.SliceBuffer("x")}
	assert.NotPanics(t, func() {
		assert.Error(t, c.Unmarshal(data, (*bytebuf.ByteView)(nil)))
		assert.Error(t, c.Unmarshal(data, (*bytebuf.Sequence)(nil)))
	})
}
