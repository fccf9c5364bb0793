package packer

import (
	"fmt"
	"strings"

	"github.com/lk2023060901/danmu-garden-packer/internal/network/wire"
)

// Message 是可以被打包的消息，通常由代码生成器为每个消息类型实现。
//
// Packer 只假定 Deserialize(Serialize(x)) 能还原 x，不校验两者是否对称。
type Message interface {
	// Serialize 将消息的全部字段按顺序写入 w。
	Serialize(w *wire.Writer) error

	// Deserialize 按 Serialize 的顺序从 r 读取字段填充到消息。
	Deserialize(r *wire.Reader) error
}

// messageName 返回用于日志和监控标签的消息类型名。
func messageName(msg Message) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", msg), "*")
}
