package wire

import (
	"encoding/binary"
	"math"

	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

// Reader 在借用的字节切片上顺序读取，读取位置不会超过切片长度。
// 读取失败时位置保持不变。
//
// Reader 不是并发安全的，每次解包各自持有一个 Reader。
type Reader struct {
	buf []byte
	pos int
}

// NewReader 创建一个从 buf 头部开始读取的 Reader。
// Reader 不会修改 buf，调用方在读取结束前不能修改它。
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Position 返回当前读取位置。
func (r *Reader) Position() int { return r.pos }

// Len 返回底层缓冲区的总长度。
func (r *Reader) Len() int { return len(r.buf) }

// Remaining 返回尚未读取的字节数。
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// next 消费 n 个字节并返回它们的视图，剩余不足时返回 EndOfBuffer。
func (r *Reader) next(n int, op string) ([]byte, error) {
	if n > r.Remaining() {
		return nil, merr.WrapErrEndOfBuffer(n, r.Remaining(), op)
	}
	b := r.buf[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadByte 读取一个字节。
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.next(1, "read byte")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool 读取一个字节，非 0 即为 true。
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.next(1, "read bool")
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.next(2, "read uint16")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.next(4, "read uint32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.next(8, "read uint64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

func (r *Reader) readUvarint(maxLen int, width uint, kind string) (uint64, error) {
	v, n, err := decodeUvarint(r.buf[r.pos:], maxLen, width, kind)
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// ReadPackedInt32 读取 WritePackedInt32 写入的值。
func (r *Reader) ReadPackedInt32() (int32, error) {
	u, err := r.readUvarint(MaxPackedLen32, 32, "packed_int32")
	if err != nil {
		return 0, err
	}
	return unzigzag32(uint32(u)), nil
}

// ReadPackedInt64 读取 WritePackedInt64 写入的值。
func (r *Reader) ReadPackedInt64() (int64, error) {
	u, err := r.readUvarint(MaxPackedLen64, 64, "packed_int64")
	if err != nil {
		return 0, err
	}
	return unzigzag64(u), nil
}

// ReadPackedUint32 读取 WritePackedUint32 写入的值。
func (r *Reader) ReadPackedUint32() (uint32, error) {
	u, err := r.readUvarint(MaxPackedLen32, 32, "packed_uint32")
	if err != nil {
		return 0, err
	}
	return uint32(u), nil
}

// ReadPackedUint64 读取 WritePackedUint64 写入的值。
func (r *Reader) ReadPackedUint64() (uint64, error) {
	return r.readUvarint(MaxPackedLen64, 64, "packed_uint64")
}

// ReadBytes 返回接下来 count 个字节的视图，结果借用 Reader 的缓冲区。
// count 为 0 时返回非 nil 的空切片，count 为负时返回 ErrParameterInvalid。
func (r *Reader) ReadBytes(count int) ([]byte, error) {
	if count < 0 {
		return nil, merr.WrapErrParameterInvalidMsg("read bytes: negative count %d", count)
	}
	if count == 0 {
		return []byte{}, nil
	}
	return r.next(count, "read bytes")
}

// ReadString 读取 WriteString 写入的字符串。
func (r *Reader) ReadString() (string, error) {
	start := r.pos
	n, err := r.ReadPackedInt32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		r.pos = start
		return "", merr.WrapErrMalformedEncoding("string", "negative length")
	}
	b, err := r.next(int(n), "read string")
	if err != nil {
		r.pos = start
		return "", err
	}
	return string(b), nil
}
