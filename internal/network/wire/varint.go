package wire

import (
	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

const (
	// MaxPackedLen32 为 32 位压缩整数最多占用的字节数。
	MaxPackedLen32 = 5
	// MaxPackedLen64 为 64 位压缩整数最多占用的字节数。
	MaxPackedLen64 = 10
)

// zig-zag 映射：0,-1,1,-2,... -> 0,1,2,3,...，小绝对值的负数也只占一个字节。
func zigzag32(v int32) uint32 { return uint32(v<<1) ^ uint32(v>>31) }

func unzigzag32(u uint32) int32 { return int32(u>>1) ^ -int32(u&1) }

func zigzag64(v int64) uint64 { return uint64(v<<1) ^ uint64(v>>63) }

func unzigzag64(u uint64) int64 { return int64(u>>1) ^ -int64(u&1) }

// appendUvarint 以 7 位一组、低位在前的方式追加 x，除最后一组外都带 0x80 续位。
func appendUvarint(buf []byte, x uint64) []byte {
	for x >= 0x80 {
		buf = append(buf, byte(x)|0x80)
		x >>= 7
	}
	return append(buf, byte(x))
}

// uvarintLen 返回 x 编码后的字节数。
func uvarintLen(x uint64) int {
	n := 1
	for x >= 0x80 {
		x >>= 7
		n++
	}
	return n
}

// decodeUvarint 从 b 头部解码一个压缩整数，最多读取 maxLen 组，结果不超过 width 位。
// 返回值、消耗的字节数。
//   - 序列在 b 结束前未终止：EndOfBuffer；
//   - maxLen 组内仍未终止，或最后一组带有超出 width 的位：MalformedEncoding。
func decodeUvarint(b []byte, maxLen int, width uint, kind string) (uint64, int, error) {
	var x uint64
	for i := 0; i < maxLen; i++ {
		if i >= len(b) {
			return 0, 0, merr.WrapErrEndOfBuffer(i+1, len(b), "read "+kind)
		}
		c := b[i]
		shift := uint(7 * i)
		if i == maxLen-1 {
			if c&0x80 != 0 {
				return 0, 0, merr.WrapErrMalformedEncoding(kind, "sequence not terminated")
			}
			if c>>(width-shift) != 0 {
				return 0, 0, merr.WrapErrMalformedEncoding(kind, "value overflows")
			}
		}
		x |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return x, i + 1, nil
		}
	}
	// maxLen 为 0 时才会走到这里
	return 0, 0, merr.WrapErrMalformedEncoding(kind, "empty sequence")
}
