package serializer

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/proto"

	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

// ProtoSerializer 使用 Protobuf 进行二进制序列化。
//
// 注意：传入/传出的对象必须实现 proto.Message。
type ProtoSerializer struct{}

// 编译期断言：确保 ProtoSerializer 实现了 Serializer 接口。
var _ Serializer = (*ProtoSerializer)(nil)

func (ProtoSerializer) Marshal(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, merr.WrapErrParameterInvalidMsg("serializer: ProtoSerializer requires proto.Message, got %T", v)
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, merr.WrapErrEncodeFailed(string(proto.MessageName(msg)), err)
	}
	return data, nil
}

func (ProtoSerializer) Unmarshal(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return merr.WrapErrParameterInvalidMsg("serializer: ProtoSerializer requires proto.Message, got %T", v)
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return merr.WrapErrDecodeFailed(string(proto.MessageName(msg)), errors.Wrap(err, "proto unmarshal"))
	}
	return nil
}
