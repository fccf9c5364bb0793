// Package bytebuffer 是 bytebufferpool 的薄封装，为打包时的 Writer 提供可复用的底层切片。
package bytebuffer

import "github.com/valyala/bytebufferpool"

// ByteBuffer 是 bytebufferpool.ByteBuffer 的别名，底层切片为 B。
type ByteBuffer = bytebufferpool.ByteBuffer

var (
	// Get 从池中取出一个空的 ByteBuffer。
	Get = bytebufferpool.Get

	// Put 将 ByteBuffer 归还到池中，nil 会被忽略。
	// 归还后不允许再访问 b 及其底层切片。
	Put = func(b *ByteBuffer) {
		if b != nil {
			bytebufferpool.Put(b)
		}
	}
)
