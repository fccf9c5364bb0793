package packer

import (
	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

// Config 为 Packer 的配置，对应配置文件中的 packer 节。
type Config struct {
	// MaxMessageSize 为单条消息的最大字节数，0 表示不限制。
	// 打包结果或待解包数据超过该值时返回 ErrParameterTooLarge。
	MaxMessageSize int `toml:"max-message-size" json:"max-message-size" mapstructure:"max-message-size"`
	// Strict 为 true 时，Deserialize 之后仍有剩余字节的数据视为解包失败。
	Strict bool `toml:"strict" json:"strict" mapstructure:"strict"`
}

// DefaultConfig 返回不限制大小、不检查尾部字节的配置。
func DefaultConfig() Config {
	return Config{}
}

// Validate 检查配置是否合法。
func (c Config) Validate() error {
	if c.MaxMessageSize < 0 {
		return merr.WrapErrParameterInvalidMsg("packer: max-message-size must not be negative, got %d", c.MaxMessageSize)
	}
	return nil
}
