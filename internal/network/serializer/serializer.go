package serializer

import (
	"strings"

	"github.com/lk2023060901/danmu-garden-packer/internal/network/packer"
	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

// 可选的序列化方案名称，对应配置中的 serializer 字段。
const (
	KindPacker = "packer"
	KindProto  = "proto"
	KindJSON   = "json"
)

// Serializer 抽象了网络层“对象 <-> 字节流”的序列化能力。
//
// 设计目标：
//   - 面向网络消息编码，既支持自有的 packer 格式，也支持 Protobuf、JSON。
//   - 调用方通过接口注入具体实现，便于后续扩展其它序列化方案。
type Serializer interface {
	// Marshal 将任意对象编码为字节序列。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将字节序列解码到目标对象。
	//
	// v 通常为指针类型，用于接收解码结果。
	Unmarshal(data []byte, v any) error
}

// New 按名称创建 Serializer，名称不区分大小写，空字符串等同于 packer。
// p 仅在 packer 方案下使用，为 nil 时使用 packer.Default()。
func New(kind string, p *packer.Packer) (Serializer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindPacker:
		return NewPackerSerializer(p), nil
	case KindProto:
		return ProtoSerializer{}, nil
	case KindJSON:
		return JSONSerializer{}, nil
	default:
		return nil, merr.WrapErrParameterInvalidMsg("serializer: unknown kind %q", kind)
	}
}
