package object

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Loggers routes runtime debug logs by concern. A nil field disables that
// concern.
type Loggers struct {
	Types    *zap.Logger // Extend, Create, ExtendClass
	Mixin    *zap.Logger // mixin application
	Instance *zap.Logger // construction
}

var loggers atomic.Pointer[Loggers]

// SetLoggers installs per-concern loggers.
func SetLoggers(l Loggers) {
	loggers.Store(&l)
}

// SetLogger routes every runtime debug log to l. A nil logger disables them.
func SetLogger(l *zap.Logger) {
	SetLoggers(Loggers{Types: l, Mixin: l, Instance: l})
}

func pick(get func(*Loggers) *zap.Logger) *zap.Logger {
	if l := loggers.Load(); l != nil {
		if z := get(l); z != nil {
			return z
		}
	}
	return zap.NewNop()
}

func log() *zap.Logger         { return pick(func(l *Loggers) *zap.Logger { return l.Types }) }
func mixinLog() *zap.Logger    { return pick(func(l *Loggers) *zap.Logger { return l.Mixin }) }
func instanceLog() *zap.Logger { return pick(func(l *Loggers) *zap.Logger { return l.Instance }) }
