package log

import "go.uber.org/atomic"

var (
	_ WithLogger   = &Binder{}
	_ LoggerBinder = &Binder{}
)

// WithLogger 用于访问组件自身的 Logger。
type WithLogger interface {
	Logger() *MLogger
}

// LoggerBinder 用于给组件设置 Logger。
type LoggerBinder interface {
	SetLogger(logger *MLogger)
}

// Bind 在 component 实现了 LoggerBinder 时为其绑定 logger，logger 为 nil 时不做任何事。
// 返回是否完成了绑定。
func Bind(component any, logger *MLogger) bool {
	if logger == nil {
		return false
	}
	b, ok := component.(LoggerBinder)
	if !ok {
		return false
	}
	b.SetLogger(logger)
	return true
}

// Binder 嵌入到组件中，统一管理组件的 Logger。
// 未绑定时跟随全局 Logger，ReplaceGlobals 之后立即生效。
type Binder struct {
	logger atomic.Pointer[MLogger]
}

// SetLogger 将 Logger 绑定到 Binder 上。
func (w *Binder) SetLogger(logger *MLogger) {
	w.logger.Store(logger)
}

// Logger 返回当前绑定的 Logger，尚未绑定时退回全局 Logger。
func (w *Binder) Logger() *MLogger {
	if l := w.logger.Load(); l != nil {
		return l
	}
	return &MLogger{Logger: L()}
}
