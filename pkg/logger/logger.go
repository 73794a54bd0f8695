package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log *zap.Logger
)

func init() {
	// 默认初始化一个 Nop Logger，防止未 Init 就调用导致 panic
	Log = zap.NewNop()
}

// Init initializes the global logger.
// level 为空时使用环境默认级别 (production: info, 其他: debug)。
func Init(env, level string) error {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return err
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := config.Build(zap.AddCallerSkip(1)) // Skip 1 caller so logs show where logger.Info was called, not wrapper
	if err != nil {
		return err
	}
	Log = l
	zap.ReplaceGlobals(Log)
	return nil
}

// Named 返回一个带名字的子 Logger，供组件构造函数注入使用。
// 子 Logger 不经过包装函数，因此去掉 Init 中添加的 caller skip。
func Named(name string) *zap.Logger {
	return Log.WithOptions(zap.AddCallerSkip(-1)).Named(name)
}

// Sync flushes any buffered log entries
func Sync() {
	_ = Log.Sync()
}

// Helper functions for direct usage
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}
