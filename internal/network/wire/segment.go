package wire

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

// absentMarker 为缺失切片在线上的长度标记。
const absentMarker = -1

// Segment 表示数组上的一段连续区间，有三种状态：
//   - 缺失：没有底层数组，Offset 与 Count 均为 0；
//   - 空：有底层数组（可以为零长），Count 为 0；
//   - 非空：底层数组上从 Offset 开始的 Count 个元素。
//
// 始终满足 0 <= Offset、0 <= Count、Offset+Count <= len(Array)。
type Segment[T any] struct {
	array  []T
	offset int
	count  int
}

// NewSegment 返回覆盖整个 array 的 Segment，array 为 nil 时为缺失状态。
func NewSegment[T any](array []T) Segment[T] {
	return Segment[T]{array: array, count: len(array)}
}

// NewSubSegment 返回 array[offset:offset+count] 对应的 Segment。
// array 为 nil 或范围越界时返回 ErrParameterInvalid。
func NewSubSegment[T any](array []T, offset, count int) (Segment[T], error) {
	if array == nil {
		return Segment[T]{}, merr.WrapErrParameterInvalidMsg("segment requires a backing array")
	}
	if offset < 0 || count < 0 || offset > len(array) || count > len(array)-offset {
		return Segment[T]{}, merr.WrapErrParameterInvalidRange(0, len(array), offset+count, "new segment")
	}
	return Segment[T]{array: array, offset: offset, count: count}, nil
}

// Array 返回底层数组，缺失状态下为 nil。
func (s Segment[T]) Array() []T { return s.array }

func (s Segment[T]) Offset() int { return s.offset }

func (s Segment[T]) Count() int { return s.count }

// HasArray 区分缺失与空两种状态。
func (s Segment[T]) HasArray() bool { return s.array != nil }

// Items 返回区间内元素的视图，缺失状态下为 nil，空状态下为非 nil 的零长切片。
func (s Segment[T]) Items() []T {
	if s.array == nil {
		return nil
	}
	return s.array[s.offset : s.offset+s.count : s.offset+s.count]
}

// writeSegmentHeader 写入长度标记，返回 false 表示缺失、后面不再有元素。
func writeSegmentHeader[T any](w *Writer, s Segment[T]) (bool, error) {
	if s.array == nil {
		w.WritePackedInt32(absentMarker)
		return false, nil
	}
	if s.count > math.MaxInt32 {
		return false, merr.WrapErrParameterInvalidRange(0, math.MaxInt32, s.count, "segment count")
	}
	w.WritePackedInt32(int32(s.count))
	return true, nil
}

// readSegmentHeader 读取长度标记，-1 返回 (-1, nil)，标记小于 -1 为 MalformedEncoding。
// 标记与剩余字节数的比较交给调用方，元素的最小宽度只有调用方知道。
func readSegmentHeader(r *Reader) (int, error) {
	start := r.pos
	n, err := r.ReadPackedInt32()
	if err != nil {
		return 0, err
	}
	if n < absentMarker {
		r.pos = start
		return 0, merr.WrapErrMalformedEncoding("segment", "invalid length marker")
	}
	return int(n), nil
}

// WriteByteSegment 写入字节切片：长度标记之后直接从源区间拷贝字节。
func WriteByteSegment(w *Writer, s Segment[byte]) error {
	present, err := writeSegmentHeader(w, s)
	if err != nil || !present {
		return err
	}
	return w.WriteBytes(s.array, s.offset, s.count)
}

// ReadByteSegment 读取 WriteByteSegment 写入的字节切片。
// 结果拥有新分配的数组，Offset 为 0，不借用 Reader 的缓冲区。
// 标记超过剩余字节数时在分配之前返回 EndOfBuffer。
func ReadByteSegment(r *Reader) (Segment[byte], error) {
	start := r.pos
	n, err := readSegmentHeader(r)
	if err != nil {
		return Segment[byte]{}, err
	}
	if n == absentMarker {
		return Segment[byte]{}, nil
	}
	view, err := r.ReadBytes(n)
	if err != nil {
		r.pos = start
		return Segment[byte]{}, err
	}
	array := make([]byte, n)
	copy(array, view)
	return NewSegment(array), nil
}

// WriteSegment 写入长度标记，随后用 codec 依次写入区间内的元素。
func WriteSegment[T any, C ElementCodec[T]](w *Writer, s Segment[T], codec C) error {
	present, err := writeSegmentHeader(w, s)
	if err != nil || !present {
		return err
	}
	for i, v := range s.Items() {
		if err := codec.Write(w, v); err != nil {
			return errors.Wrapf(err, "write segment element %d", i)
		}
	}
	return nil
}

// ReadSegment 读取 WriteSegment 写入的切片，结果总是覆盖一个新分配的完整数组。
// codec 实现 ElementSizer 且最小宽度大于 0 时，标记超出剩余字节在分配之前返回 EndOfBuffer；
// 否则按剩余字节数预留容量，逐个追加元素。
// 任一元素失败时返回错误，Reader 回到调用前的位置。
func ReadSegment[T any, C ElementCodec[T]](r *Reader, codec C) (Segment[T], error) {
	start := r.pos
	n, err := readSegmentHeader(r)
	if err != nil {
		return Segment[T]{}, err
	}
	if n == absentMarker {
		return Segment[T]{}, nil
	}

	minSize := 0
	if sizer, ok := any(codec).(ElementSizer); ok {
		minSize = sizer.MinSize()
	}
	capacity := n
	if minSize > 0 {
		if int64(n)*int64(minSize) > int64(r.Remaining()) {
			remaining := r.Remaining()
			r.pos = start
			return Segment[T]{}, merr.WrapErrEndOfBuffer(n*minSize, remaining, "read segment")
		}
	} else if capacity > r.Remaining() {
		capacity = r.Remaining()
	}

	array := make([]T, 0, capacity)
	for i := 0; i < n; i++ {
		v, err := codec.Read(r)
		if err != nil {
			r.pos = start
			return Segment[T]{}, errors.Wrapf(err, "read segment element %d", i)
		}
		array = append(array, v)
	}
	return NewSegment(array), nil
}
