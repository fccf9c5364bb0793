package packer

import (
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-packer/internal/network/wire"
	"github.com/lk2023060901/danmu-garden-packer/internal/pool/bytebuffer"
	"github.com/lk2023060901/danmu-garden-packer/pkg/log"
	"github.com/lk2023060901/danmu-garden-packer/pkg/metrics"
	"github.com/lk2023060901/danmu-garden-packer/pkg/util/merr"
)

// 解包失败多由对端数据损坏引起，按额度限流输出，避免刷屏。
const unpackWarnCost = 1.0

var defaultPacker = atomic.NewPointer(mustNew(DefaultConfig()))

// Packer 负责把消息打包成字节序列以及把字节序列解包成消息。
// 每次调用各自持有 Writer/Reader，Packer 可以被多个 goroutine 同时使用。
type Packer struct {
	log.Binder

	cfg Config
}

// New 根据 cfg 创建 Packer。
func New(cfg Config) (*Packer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Packer{cfg: cfg}, nil
}

func mustNew(cfg Config) *Packer {
	p, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

// Default 返回包级函数 Pack/Unpack 使用的 Packer。
func Default() *Packer {
	return defaultPacker.Load()
}

// SetDefault 替换包级函数使用的 Packer，nil 恢复为默认配置。
func SetDefault(p *Packer) {
	if p == nil {
		p = mustNew(DefaultConfig())
	}
	defaultPacker.Store(p)
}

// Config 返回 Packer 的配置。
func (p *Packer) Config() Config {
	return p.cfg
}

// Pack 使用默认 Packer 打包 msg。
func Pack(msg Message) ([]byte, error) {
	return Default().Pack(msg)
}

// Unpack 使用默认 Packer 把 data 解包为 T。
func Unpack[T any, PT interface {
	*T
	Message
}](data []byte) (T, error) {
	return UnpackWith[T, PT](Default(), data)
}

// UnpackWith 使用 p 把 data 解包为 T。失败时返回 T 的零值，不会返回填充了一半的消息。
func UnpackWith[T any, PT interface {
	*T
	Message
}](p *Packer, data []byte) (T, error) {
	var t T
	if err := p.UnpackInto(data, PT(&t)); err != nil {
		var zero T
		return zero, err
	}
	return t, nil
}

// Pack 把 msg 序列化为新分配的字节切片，结果归调用方所有。
// 失败时返回的错误同时匹配 ErrCodecEncodeFailed 与底层原因。
func (p *Packer) Pack(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, merr.WrapErrParameterInvalidMsg("pack: nil message")
	}
	start := time.Now()
	name := messageName(msg)

	buf := bytebuffer.Get()
	defer bytebuffer.Put(buf)

	w := wire.NewWriter(buf.B)
	err := msg.Serialize(w)
	// 扩容后的底层数组随 buf 一起归还到池中。
	buf.B = w.Bytes()
	if err == nil && p.cfg.MaxMessageSize > 0 && w.Len() > p.cfg.MaxMessageSize {
		err = merr.WrapErrParameterTooLarge("size", w.Len(), p.cfg.MaxMessageSize, "pack")
	}
	if err != nil {
		err = merr.WrapErrEncodeFailed(name, err)
		p.observe(metrics.PackStage, start, 0, err)
		p.Logger().Warn("pack message failed",
			log.FieldMessage(name),
			zap.Int("size", w.Len()),
			zap.Error(err))
		return nil, err
	}

	out := make([]byte, w.Len())
	copy(out, w.Bytes())
	p.observe(metrics.PackStage, start, len(out), nil)
	return out, nil
}

// UnpackInto 从 data 反序列化到 msg。
// 失败时返回的错误同时匹配 ErrCodecDecodeFailed 与底层原因，msg 的内容不确定。
func (p *Packer) UnpackInto(data []byte, msg Message) error {
	if msg == nil {
		return merr.WrapErrParameterInvalidMsg("unpack: nil message")
	}
	start := time.Now()
	name := messageName(msg)

	var err error
	if p.cfg.MaxMessageSize > 0 && len(data) > p.cfg.MaxMessageSize {
		err = merr.WrapErrParameterTooLarge("size", len(data), p.cfg.MaxMessageSize, "unpack")
	} else {
		r := wire.NewReader(data)
		err = msg.Deserialize(r)
		if err == nil && p.cfg.Strict && r.Remaining() > 0 {
			err = merr.WrapErrTrailingBytes(name, r.Remaining())
		}
	}
	if err != nil {
		err = merr.WrapErrDecodeFailed(name, err)
		p.observe(metrics.UnpackStage, start, 0, err)
		metrics.PackerDecodeFailures.WithLabelValues(name).Inc()
		p.Logger().RatedWarn(unpackWarnCost, "unpack message failed",
			log.FieldMessage(name),
			zap.Int("size", len(data)),
			zap.Error(err))
		return err
	}

	p.observe(metrics.UnpackStage, start, len(data), nil)
	return nil
}

func (p *Packer) observe(stage string, start time.Time, size int, err error) {
	metrics.PackerMessagesTotal.WithLabelValues(stage, merr.CodeName(err)).Inc()
	if err != nil {
		return
	}
	metrics.PackerMessageBytes.WithLabelValues(stage).Observe(float64(size))
	metrics.PackerLatency.WithLabelValues(stage).Observe(float64(time.Since(start).Microseconds()))
}
