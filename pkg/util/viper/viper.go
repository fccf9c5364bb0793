package viper

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	spfviper "github.com/spf13/viper"
)

// EnvPrefix 为环境变量覆盖配置时使用的前缀，例如 DANMU_PACKER_STRICT 覆盖 packer.strict。
const EnvPrefix = "DANMU"

// Config 封装 spf13/viper 实例，对外提供精简的 YAML/JSON 配置加载接口。
// 同名环境变量（EnvPrefix_ 开头，"." 替换为 "_"）优先于文件中的值。
type Config struct {
	v *spfviper.Viper
}

// New 创建一个空的 Config，已开启环境变量覆盖。
func New() *Config {
	v := spfviper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

func (c *Config) viper() *spfviper.Viper {
	if c.v == nil {
		*c = *New()
	}
	return c.v
}

// LoadFile 将 YAML 或 JSON 配置文件加载到 Config 中。
// 文件类型通过扩展名（.yaml/.yml/.json）推断。
func (c *Config) LoadFile(path string) error {
	v := c.viper()
	v.SetConfigFile(path)

	if typ := configType(path); typ != "" {
		v.SetConfigType(typ)
	}

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	return nil
}

// LoadReader 从 r 读取 typ（yaml/json）格式的配置。
func (c *Config) LoadReader(typ string, r io.Reader) error {
	v := c.viper()
	v.SetConfigType(typ)
	if err := v.ReadConfig(r); err != nil {
		return errors.Wrapf(err, "read %s config", typ)
	}
	return nil
}

// SetDefault 设置 key 的默认值，文件和环境变量均未提供时生效。
func (c *Config) SetDefault(key string, value any) {
	c.viper().SetDefault(key, value)
}

// IsSet 判断 key 是否在文件、环境变量或默认值中出现过。
func (c *Config) IsSet(key string) bool {
	return c.viper().IsSet(key)
}

// GetString 返回 key 对应的字符串值。
func (c *Config) GetString(key string) string {
	return c.viper().GetString(key)
}

// Unmarshal 将完整配置反序列化到 dst。
// dst 应为结构体或 map 的指针。
func (c *Config) Unmarshal(dst any) error {
	return c.viper().Unmarshal(dst)
}

// UnmarshalKey 将指定 key 对应的子配置反序列化到 dst。
// key 不存在时 dst 保持原值。
func (c *Config) UnmarshalKey(key string, dst any) error {
	return c.viper().UnmarshalKey(key, dst)
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		// 交给 viper 推断，或在读取时返回错误。
		return ""
	}
}
