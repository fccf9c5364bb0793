package wire

import (
	"encoding/binary"
	"math"

	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

// Writer 是只追加的字节缓冲区，写入位置始终等于缓冲区长度。
// 定长类型按小端序写入，压缩整数见 WritePackedInt32/WritePackedInt64。
//
// Writer 不是并发安全的，每次打包各自持有一个 Writer。
type Writer struct {
	buf []byte
}

// NewWriter 创建一个复用 buf 底层数组的 Writer，写入从长度 0 开始。
// buf 可以为 nil。
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf[:0]}
}

// Len 返回已写入的字节数。
func (w *Writer) Len() int { return len(w.buf) }

// Bytes 返回已写入的内容，结果借用 Writer 的底层数组，下一次写入后可能失效。
func (w *Writer) Bytes() []byte { return w.buf }

// Reset 清空已写入内容，保留底层数组。
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// WriteByte 追加一个字节，总是返回 nil，满足 io.ByteWriter。
func (w *Writer) WriteByte(c byte) error {
	w.buf = append(w.buf, c)
	return nil
}

// WriteBool 以一个字节写入 v，true 为 1，false 为 0。
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

func (w *Writer) WriteUint16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }

func (w *Writer) WriteUint32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *Writer) WriteUint64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }

func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WritePackedInt32 写入 zig-zag 后的压缩整数，占 1~5 字节。
func (w *Writer) WritePackedInt32(v int32) {
	w.buf = appendUvarint(w.buf, uint64(zigzag32(v)))
}

// WritePackedInt64 写入 zig-zag 后的压缩整数，占 1~10 字节。
func (w *Writer) WritePackedInt64(v int64) {
	w.buf = appendUvarint(w.buf, zigzag64(v))
}

// WritePackedUint32 写入不做 zig-zag 的压缩整数，占 1~5 字节。
func (w *Writer) WritePackedUint32(v uint32) {
	w.buf = appendUvarint(w.buf, uint64(v))
}

// WritePackedUint64 写入不做 zig-zag 的压缩整数，占 1~10 字节。
func (w *Writer) WritePackedUint64(v uint64) {
	w.buf = appendUvarint(w.buf, v)
}

// WriteBytes 追加 buf[offset:offset+count]。
// offset、count 为负或范围越过 len(buf) 时返回 ErrParameterInvalid，此时 Writer 不发生任何变化。
func (w *Writer) WriteBytes(buf []byte, offset, count int) error {
	if offset < 0 || count < 0 || offset > len(buf) || count > len(buf)-offset {
		return merr.WrapErrParameterInvalidRange(0, len(buf), offset+count,
			"write bytes", "offset+count must be within the source buffer")
	}
	w.buf = append(w.buf, buf[offset:offset+count]...)
	return nil
}

// WriteString 写入压缩 int32 表示的字节长度，随后是 s 的 UTF-8 字节。
func (w *Writer) WriteString(s string) error {
	if len(s) > math.MaxInt32 {
		return merr.WrapErrParameterTooLarge("length", len(s), math.MaxInt32, "write string")
	}
	w.WritePackedInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}
