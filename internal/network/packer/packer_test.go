package packer

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/danmu-garden-packer/internal/network/wire"
	"github.com/lk2023060901/danmu-garden-packer/pkg/log"
	"github.com/lk2023060901/danmu-garden-packer/pkg/metrics"
	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

type byteSegmentMessage struct {
	Array wire.Segment[byte]
}

func (m *byteSegmentMessage) Serialize(w *wire.Writer) error {
	return wire.WriteByteSegment(w, m.Array)
}

func (m *byteSegmentMessage) Deserialize(r *wire.Reader) (err error) {
	m.Array, err = wire.ReadByteSegment(r)
	return err
}

type intSegmentMessage struct {
	Array wire.Segment[int32]
}

func (m *intSegmentMessage) Serialize(w *wire.Writer) error {
	return wire.WriteSegment(w, m.Array, wire.PackedInt32Codec{})
}

func (m *intSegmentMessage) Deserialize(r *wire.Reader) (err error) {
	m.Array, err = wire.ReadSegment[int32](r, wire.PackedInt32Codec{})
	return err
}

// danmuMessage 是一条弹幕，覆盖常见字段类型。
type danmuMessage struct {
	RoomID  int64
	UserID  uint32
	Content string
	Color   uint32
	Pos     float32
	Pinned  bool
	Tags    wire.Segment[string]
}

func (m *danmuMessage) Serialize(w *wire.Writer) error {
	w.WritePackedInt64(m.RoomID)
	w.WritePackedUint32(m.UserID)
	if err := w.WriteString(m.Content); err != nil {
		return err
	}
	w.WriteUint32(m.Color)
	w.WriteFloat32(m.Pos)
	w.WriteBool(m.Pinned)
	return wire.WriteSegment(w, m.Tags, wire.StringCodec{})
}

func (m *danmuMessage) Deserialize(r *wire.Reader) (err error) {
	if m.RoomID, err = r.ReadPackedInt64(); err != nil {
		return err
	}
	if m.UserID, err = r.ReadPackedUint32(); err != nil {
		return err
	}
	if m.Content, err = r.ReadString(); err != nil {
		return err
	}
	if m.Color, err = r.ReadUint32(); err != nil {
		return err
	}
	if m.Pos, err = r.ReadFloat32(); err != nil {
		return err
	}
	if m.Pinned, err = r.ReadBool(); err != nil {
		return err
	}
	m.Tags, err = wire.ReadSegment[string](r, wire.StringCodec{})
	return err
}

type failingMessage struct{}

var errBroken = errors.New("broken serializer")

func (failingMessage) Serialize(w *wire.Writer) error { return errBroken }

func (failingMessage) Deserialize(r *wire.Reader) error { return errBroken }

type SegmentSuite struct {
	suite.Suite
}

func (s *SegmentSuite) TestEmptyByteArray() {
	data, err := Pack(&byteSegmentMessage{Array: wire.NewSegment([]byte{})})
	s.Require().NoError(err)

	unpacked, err := Unpack[byteSegmentMessage](data)
	s.Require().NoError(err)
	s.NotNil(unpacked.Array.Array())
	s.Equal(0, unpacked.Array.Count())
}

func (s *SegmentSuite) TestNullByteArray() {
	data, err := Pack(&byteSegmentMessage{})
	s.Require().NoError(err)
	s.Equal([]byte{0x01}, data)

	unpacked, err := Unpack[byteSegmentMessage](data)
	s.Require().NoError(err)
	s.Nil(unpacked.Array.Array())
	s.Equal(0, unpacked.Array.Offset())
	s.Equal(0, unpacked.Array.Count())
}

func (s *SegmentSuite) TestSegmentByteArray() {
	source := []byte{0, 1, 2, 3, 4, 5, 6}
	seg, err := wire.NewSubSegment(source, 3, 2)
	s.Require().NoError(err)

	data, err := Pack(&byteSegmentMessage{Array: seg})
	s.Require().NoError(err)

	unpacked, err := Unpack[byteSegmentMessage](data)
	s.Require().NoError(err)
	s.NotNil(unpacked.Array.Array())
	s.Equal(2, unpacked.Array.Count())
	s.Equal([]byte{3, 4}, unpacked.Array.Items())
}

func (s *SegmentSuite) TestEmptyIntArray() {
	data, err := Pack(&intSegmentMessage{Array: wire.NewSegment([]int32{})})
	s.Require().NoError(err)

	unpacked, err := Unpack[intSegmentMessage](data)
	s.Require().NoError(err)
	s.NotNil(unpacked.Array.Array())
	s.Equal(0, unpacked.Array.Count())
}

func (s *SegmentSuite) TestNullIntArray() {
	data, err := Pack(&intSegmentMessage{})
	s.Require().NoError(err)

	unpacked, err := Unpack[intSegmentMessage](data)
	s.Require().NoError(err)
	s.Nil(unpacked.Array.Array())
	s.Equal(0, unpacked.Array.Offset())
	s.Equal(0, unpacked.Array.Count())
}

func (s *SegmentSuite) TestSegmentIntArray() {
	source := []int32{0, 1, 2, 3, 4, 5, 6}
	seg, err := wire.NewSubSegment(source, 3, 2)
	s.Require().NoError(err)

	data, err := Pack(&intSegmentMessage{Array: seg})
	s.Require().NoError(err)

	unpacked, err := Unpack[intSegmentMessage](data)
	s.Require().NoError(err)
	s.NotNil(unpacked.Array.Array())
	s.Equal(2, unpacked.Array.Count())
	s.Equal([]int32{3, 4}, unpacked.Array.Items())
}

func TestSegmentMessages(t *testing.T) {
	suite.Run(t, new(SegmentSuite))
}

func newDanmu() *danmuMessage {
	return &danmuMessage{
		RoomID:  -42,
		UserID:  10086,
		Content: "前方高能",
		Color:   0xffffff,
		Pos:     0.5,
		Pinned:  true,
		Tags:    wire.NewSegment([]string{"hot", "vip"}),
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	msg := newDanmu()
	data, err := Pack(msg)
	require.NoError(t, err)

	got, err := Unpack[danmuMessage](data)
	require.NoError(t, err)
	assert.Equal(t, *msg, got)
}

func TestPackReturnsOwnedCopy(t *testing.T) {
	first, err := Pack(newDanmu())
	require.NoError(t, err)
	snapshot := append([]byte(nil), first...)

	// 之后的打包复用池中的缓冲区，不能影响已经返回的结果。
	for i := 0; i < 10; i++ {
		_, err := Pack(&byteSegmentMessage{Array: wire.NewSegment([]byte{0xee, 0xee, 0xee})})
		require.NoError(t, err)
	}
	assert.Equal(t, snapshot, first)
}

func TestUnpackTruncated(t *testing.T) {
	data, err := Pack(newDanmu())
	require.NoError(t, err)

	for n := 0; n < len(data); n++ {
		got, err := Unpack[danmuMessage](data[:n])
		require.Error(t, err, "prefix %d", n)
		assert.ErrorIs(t, err, merr.ErrCodecDecodeFailed)
		assert.ErrorIs(t, err, merr.ErrCodecEndOfBuffer)
		assert.Equal(t, danmuMessage{}, got)
	}
}

func TestUnpackMalformed(t *testing.T) {
	// 长度标记 -2
	_, err := Unpack[byteSegmentMessage]([]byte{0x03})
	assert.ErrorIs(t, err, merr.ErrCodecDecodeFailed)
	assert.ErrorIs(t, err, merr.ErrCodecMalformedEncoding)
	assert.Equal(t, "malformed_encoding", merr.CodeName(err))
}

func TestSerializeFailure(t *testing.T) {
	_, err := Pack(failingMessage{})
	assert.ErrorIs(t, err, merr.ErrCodecEncodeFailed)
	assert.ErrorIs(t, err, errBroken)

	err = Default().UnpackInto([]byte{0x00}, failingMessage{})
	assert.ErrorIs(t, err, merr.ErrCodecDecodeFailed)
	assert.ErrorIs(t, err, errBroken)

	_, err = Pack(nil)
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
	assert.ErrorIs(t, Default().UnpackInto(nil, nil), merr.ErrParameterInvalid)
}

func TestStrict(t *testing.T) {
	data, err := Pack(newDanmu())
	require.NoError(t, err)
	data = append(data, 0x00)

	loose, err := New(Config{})
	require.NoError(t, err)
	_, err = UnpackWith[danmuMessage](loose, data)
	assert.NoError(t, err)

	strict, err := New(Config{Strict: true})
	require.NoError(t, err)
	got, err := UnpackWith[danmuMessage](strict, data)
	assert.ErrorIs(t, err, merr.ErrCodecDecodeFailed)
	assert.ErrorIs(t, err, merr.ErrCodecTrailingBytes)
	assert.Equal(t, danmuMessage{}, got)
}

func TestMaxMessageSize(t *testing.T) {
	_, err := New(Config{MaxMessageSize: -1})
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)

	p, err := New(Config{MaxMessageSize: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, p.Config().MaxMessageSize)

	small := &byteSegmentMessage{Array: wire.NewSegment([]byte{1, 2, 3})}
	data, err := p.Pack(small)
	require.NoError(t, err)
	assert.Len(t, data, 4)

	_, err = p.Pack(&byteSegmentMessage{Array: wire.NewSegment([]byte{1, 2, 3, 4})})
	assert.ErrorIs(t, err, merr.ErrCodecEncodeFailed)
	assert.ErrorIs(t, err, merr.ErrParameterTooLarge)

	_, err = UnpackWith[byteSegmentMessage](p, []byte{0x08, 1, 2, 3, 4})
	assert.ErrorIs(t, err, merr.ErrCodecDecodeFailed)
	assert.ErrorIs(t, err, merr.ErrParameterTooLarge)
}

func TestSetDefault(t *testing.T) {
	old := Default()
	defer SetDefault(old)

	strict, err := New(Config{Strict: true})
	require.NoError(t, err)
	SetDefault(strict)
	assert.Same(t, strict, Default())

	_, err = Unpack[byteSegmentMessage]([]byte{0x01, 0x00})
	assert.ErrorIs(t, err, merr.ErrCodecTrailingBytes)

	SetDefault(nil)
	assert.NotSame(t, strict, Default())
	assert.Equal(t, DefaultConfig(), Default().Config())
}

func TestMetrics(t *testing.T) {
	packOK := metrics.PackerMessagesTotal.WithLabelValues(metrics.PackStage, "ok")
	unpackEOB := metrics.PackerMessagesTotal.WithLabelValues(metrics.UnpackStage, "end_of_buffer")
	failures := metrics.PackerDecodeFailures.WithLabelValues("packer.danmuMessage")

	beforePack := testutil.ToFloat64(packOK)
	beforeEOB := testutil.ToFloat64(unpackEOB)
	beforeFailures := testutil.ToFloat64(failures)

	data, err := Pack(newDanmu())
	require.NoError(t, err)
	_, err = Unpack[danmuMessage](data[:1])
	require.Error(t, err)

	assert.Equal(t, beforePack+1, testutil.ToFloat64(packOK))
	assert.Equal(t, beforeEOB+1, testutil.ToFloat64(unpackEOB))
	assert.Equal(t, beforeFailures+1, testutil.ToFloat64(failures))
}

func TestLoggerBinding(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)

	l := log.With(log.FieldModule("packer"))
	p.SetLogger(l)
	assert.Same(t, l, p.Logger())

	_, err = UnpackWith[danmuMessage](p, nil)
	assert.ErrorIs(t, err, merr.ErrCodecEndOfBuffer)
}

func TestConcurrentPackUnpack(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				msg := newDanmu()
				msg.RoomID = id*1000 + int64(j)
				data, err := Pack(msg)
				if !assert.NoError(t, err) {
					return
				}
				got, err := Unpack[danmuMessage](data)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, msg.RoomID, got.RoomID)
			}
		}(int64(i))
	}
	wg.Wait()
}
