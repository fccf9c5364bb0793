package log

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLoggerLevel(t *testing.T) {
	lg, props, err := InitTestLogger(t, &Config{Level: "trace"})
	require.NoError(t, err)
	require.NotNil(t, lg)
	assert.Equal(t, zapcore.DebugLevel, props.Level.Level())

	_, _, err = InitTestLogger(t, &Config{Level: "verbose"})
	assert.Error(t, err)
}

func TestInitLoggerFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Level:  "info",
		Format: "json",
		File: FileLogConfig{
			RootPath: dir,
			Filename: "packer.log",
		},
	}
	lg, _, err := InitLogger(cfg)
	require.NoError(t, err)
	lg.Info("hello", zap.Int("size", 3))
	require.NoError(t, lg.Sync())
	assert.Equal(t, defaultLogMaxSize, cfg.File.MaxSize)

	content, err := os.ReadFile(filepath.Join(dir, "packer.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"hello"`)
	assert.Contains(t, string(content), `"size":3`)

	_, _, err = InitLogger(&Config{File: FileLogConfig{RootPath: dir, Filename: "."}})
	assert.Error(t, err)
}

func TestReplaceGlobalsAndLevel(t *testing.T) {
	oldL, oldP := L(), _globalP.Load()
	defer ReplaceGlobals(oldL, oldP)

	lg, props, err := InitTestLogger(t, &Config{Level: "warn"})
	require.NoError(t, err)
	ReplaceGlobals(lg, props)

	assert.Equal(t, zapcore.WarnLevel, GetLevel())
	SetLevel(zapcore.ErrorLevel)
	assert.Equal(t, zapcore.ErrorLevel, GetLevel())
	assert.Same(t, lg, L())

	Info("not visible")
	Error("visible", FieldModule("log"))

	S().Errorw("sugared", "module", "log")
	assert.NoError(t, Sync())
}

func TestRateLimit(t *testing.T) {
	defer SetRateLimit(RateLimitConfig{})

	SetRateLimit(RateLimitConfig{})
	for i := 0; i < 10; i++ {
		assert.True(t, RatedWarn(100, "always"))
	}

	SetRateLimit(RateLimitConfig{Enable: true, CreditPerSecond: 0.001, MaxBalance: 1})
	assert.True(t, RatedInfo(1, "first"))
	assert.False(t, RatedInfo(1, "second"))
}

func TestMLoggerRateGroup(t *testing.T) {
	l := With(FieldComponent("test")).WithRateGroup("log_test_group", 0.001, 1)
	assert.True(t, l.RatedDebug(1, "first"))
	assert.False(t, l.RatedInfo(1, "second"))

	// 同名分组共享额度。
	other := With().WithRateGroup("log_test_group", 0.001, 1)
	assert.False(t, other.RatedWarn(1, "third"))

	// 子 Logger 沿用分组。
	assert.False(t, l.With(zap.String("k", "v")).RatedWarn(1, "fourth"))
}

func TestCtxLogger(t *testing.T) {
	assert.NotNil(t, Ctx(nil)) //nolint:staticcheck
	ctx := WithModule(context.Background(), "packer")
	l := Ctx(ctx)
	assert.NotSame(t, L(), l.Logger)
	assert.Same(t, l, Ctx(ctx))

	// 在已有 Logger 的基础上继续追加字段。
	ctx2 := WithFields(ctx, FieldMessage("pingMessage"))
	assert.NotSame(t, l, Ctx(ctx2))
	assert.Same(t, l, Ctx(ctx))
}

func TestBinder(t *testing.T) {
	var b Binder
	assert.NotNil(t, b.Logger())

	l := With(FieldModule("binder"))
	assert.True(t, Bind(&b, l))
	assert.Same(t, l, b.Logger())

	assert.False(t, Bind(&b, nil))
	assert.False(t, Bind(struct{}{}, l))
	assert.Same(t, l, b.Logger())
}
