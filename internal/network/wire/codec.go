package wire

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

// ElementCodec 描述切片元素的读写方式，由 WriteSegment/ReadSegment 在编译期选定。
type ElementCodec[T any] interface {
	Write(w *Writer, v T) error
	Read(r *Reader) (T, error)
}

// ElementSizer 由能给出单个元素最小编码字节数的 ElementCodec 实现。
// ReadSegment 据此在分配之前拒绝超出剩余字节的长度标记；
// 未实现或返回 0 的 codec 视为元素可能不占任何字节。
type ElementSizer interface {
	MinSize() int
}

var (
	_ ElementCodec[int32]   = PackedInt32Codec{}
	_ ElementCodec[int64]   = PackedInt64Codec{}
	_ ElementCodec[int]     = SignedCodec[int]{}
	_ ElementCodec[uint16]  = UnsignedCodec[uint16]{}
	_ ElementCodec[float32] = Float32Codec{}
	_ ElementCodec[float64] = Float64Codec{}
	_ ElementCodec[bool]    = BoolCodec{}
	_ ElementCodec[string]  = StringCodec{}
	_ ElementCodec[int32]   = FuncCodec[int32]{}

	_ ElementSizer = PackedInt32Codec{}
	_ ElementSizer = StringCodec{}
	_ ElementSizer = FuncCodec[int32]{}
)

// PackedInt32Codec 以压缩 int32 读写元素。
type PackedInt32Codec struct{}

func (PackedInt32Codec) Write(w *Writer, v int32) error {
	w.WritePackedInt32(v)
	return nil
}

func (PackedInt32Codec) Read(r *Reader) (int32, error) { return r.ReadPackedInt32() }

func (PackedInt32Codec) MinSize() int { return 1 }

// PackedInt64Codec 以压缩 int64 读写元素。
type PackedInt64Codec struct{}

func (PackedInt64Codec) Write(w *Writer, v int64) error {
	w.WritePackedInt64(v)
	return nil
}

func (PackedInt64Codec) Read(r *Reader) (int64, error) { return r.ReadPackedInt64() }

func (PackedInt64Codec) MinSize() int { return 1 }

// SignedCodec 以压缩 int64 读写任意有符号整数，读取时超出 T 范围的值视为 MalformedEncoding。
type SignedCodec[T constraints.Signed] struct{}

func (SignedCodec[T]) Write(w *Writer, v T) error {
	w.WritePackedInt64(int64(v))
	return nil
}

func (SignedCodec[T]) Read(r *Reader) (T, error) {
	start := r.pos
	v, err := r.ReadPackedInt64()
	if err != nil {
		return 0, err
	}
	if int64(T(v)) != v {
		r.pos = start
		return 0, merr.WrapErrMalformedEncoding("signed", "value out of range")
	}
	return T(v), nil
}

func (SignedCodec[T]) MinSize() int { return 1 }

// UnsignedCodec 以压缩 uint64 读写任意无符号整数，读取时超出 T 范围的值视为 MalformedEncoding。
type UnsignedCodec[T constraints.Unsigned] struct{}

func (UnsignedCodec[T]) Write(w *Writer, v T) error {
	w.WritePackedUint64(uint64(v))
	return nil
}

func (UnsignedCodec[T]) Read(r *Reader) (T, error) {
	start := r.pos
	v, err := r.ReadPackedUint64()
	if err != nil {
		return 0, err
	}
	if uint64(T(v)) != v {
		r.pos = start
		return 0, merr.WrapErrMalformedEncoding("unsigned", "value out of range")
	}
	return T(v), nil
}

func (UnsignedCodec[T]) MinSize() int { return 1 }

// Float32Codec 以 4 字节小端序读写元素。
type Float32Codec struct{}

func (Float32Codec) Write(w *Writer, v float32) error {
	w.WriteUint32(math.Float32bits(v))
	return nil
}

func (Float32Codec) Read(r *Reader) (float32, error) { return r.ReadFloat32() }

func (Float32Codec) MinSize() int { return 4 }

// Float64Codec 以 8 字节小端序读写元素。
type Float64Codec struct{}

func (Float64Codec) Write(w *Writer, v float64) error {
	w.WriteUint64(math.Float64bits(v))
	return nil
}

func (Float64Codec) Read(r *Reader) (float64, error) { return r.ReadFloat64() }

func (Float64Codec) MinSize() int { return 8 }

// BoolCodec 以一个字节读写元素。
type BoolCodec struct{}

func (BoolCodec) Write(w *Writer, v bool) error {
	w.WriteBool(v)
	return nil
}

func (BoolCodec) Read(r *Reader) (bool, error) { return r.ReadBool() }

func (BoolCodec) MinSize() int { return 1 }

// StringCodec 以 WriteString/ReadString 的格式读写元素。
type StringCodec struct{}

func (StringCodec) Write(w *Writer, v string) error { return w.WriteString(v) }

func (StringCodec) Read(r *Reader) (string, error) { return r.ReadString() }

func (StringCodec) MinSize() int { return 1 }

// FuncCodec 用一对函数适配 ElementCodec，通常由生成的消息代码提供，
// 例如嵌套消息的读写。
type FuncCodec[T any] struct {
	WriteFunc func(w *Writer, v T) error
	ReadFunc  func(r *Reader) (T, error)
	// MinBytes 为单个元素至少占用的字节数，0 表示元素可以不写任何字节（例如没有字段的嵌套消息）。
	MinBytes int
}

func (c FuncCodec[T]) MinSize() int { return c.MinBytes }

func (c FuncCodec[T]) Write(w *Writer, v T) error {
	if c.WriteFunc == nil {
		return merr.WrapErrOperationNotSupported("write", "FuncCodec without WriteFunc")
	}
	return c.WriteFunc(w, v)
}

func (c FuncCodec[T]) Read(r *Reader) (T, error) {
	if c.ReadFunc == nil {
		var zero T
		return zero, merr.WrapErrOperationNotSupported("read", "FuncCodec without ReadFunc")
	}
	return c.ReadFunc(r)
}
