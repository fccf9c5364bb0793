package serializer

import (
	"github.com/lk2023060901/danmu-garden-packer/internal/network/packer"
	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

// PackerSerializer 使用 packer 的二进制格式编解码。
//
// 注意：传入/传出的对象必须实现 packer.Message。
type PackerSerializer struct {
	p *packer.Packer
}

// 编译期断言：确保 PackerSerializer 实现了 Serializer 接口。
var _ Serializer = (*PackerSerializer)(nil)

// NewPackerSerializer 创建使用 p 的 PackerSerializer，p 为 nil 时每次调用都使用 packer.Default()。
func NewPackerSerializer(p *packer.Packer) *PackerSerializer {
	return &PackerSerializer{p: p}
}

func (s *PackerSerializer) packer() *packer.Packer {
	if s.p == nil {
		return packer.Default()
	}
	return s.p
}

func (s *PackerSerializer) Marshal(v any) ([]byte, error) {
	msg, ok := v.(packer.Message)
	if !ok {
		return nil, merr.WrapErrParameterInvalidMsg("serializer: PackerSerializer requires packer.Message, got %T", v)
	}
	return s.packer().Pack(msg)
}

func (s *PackerSerializer) Unmarshal(data []byte, v any) error {
	msg, ok := v.(packer.Message)
	if !ok {
		return merr.WrapErrParameterInvalidMsg("serializer: PackerSerializer requires packer.Message, got %T", v)
	}
	return s.packer().UnpackInto(data, msg)
}
