package util

import "sync"

var (
	globalMu     sync.RWMutex
	globalLogger LoggerInterface
)

// InitLogger installs the process-wide logger. A later call replaces the
// previous logger and closes it.
func InitLogger(opts LoggerOptions) error {
	l, err := NewLogger(opts)
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetLogger swaps the process-wide logger; nil disables logging.
func SetLogger(l LoggerInterface) {
	globalMu.Lock()
	prev := globalLogger
	globalLogger = l
	globalMu.Unlock()

	if prev != nil && prev != l {
		_ = prev.Close()
	}
}

// Log returns the process-wide logger or nil.
func Log() LoggerInterface {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

func LogDebug(msg string, fields ...Field) {
	if l := Log(); l != nil {
		l.Debug(msg, fields...)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if l := Log(); l != nil {
		l.Debugf(format, args...)
	}
}

func LogInfo(msg string, fields ...Field) {
	if l := Log(); l != nil {
		l.Info(msg, fields...)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := Log(); l != nil {
		l.Infof(format, args...)
	}
}

func LogWarn(msg string, fields ...Field) {
	if l := Log(); l != nil {
		l.Warn(msg, fields...)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := Log(); l != nil {
		l.Warnf(format, args...)
	}
}

func LogError(msg string, fields ...Field) {
	if l := Log(); l != nil {
		l.Error(msg, fields...)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := Log(); l != nil {
		l.Errorf(format, args...)
	}
}
