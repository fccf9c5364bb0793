package serializer

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

// JSONSerializer 使用 bytedance/sonic 实现 JSON 编解码，行为与 encoding/json 保持一致。
type JSONSerializer struct{}

// 编译期断言：确保 JSONSerializer 实现了 Serializer 接口。
var _ Serializer = (*JSONSerializer)(nil)

var jsonAPI = sonic.ConfigStd

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	data, err := jsonAPI.Marshal(v)
	if err != nil {
		return nil, merr.WrapErrEncodeFailed(fmt.Sprintf("%T", v), err)
	}
	return data, nil
}

func (JSONSerializer) Unmarshal(data []byte, v any) error {
	if err := jsonAPI.Unmarshal(data, v); err != nil {
		return merr.WrapErrDecodeFailed(fmt.Sprintf("%T", v), err)
	}
	return nil
}
