package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L 全局日志记录器，InitLogger 之前为 no-op
var L = zap.NewNop()

// InitLogger level 取值 debug/info/warn/error/fatal/panic；
// production=true 输出 JSON，否则输出彩色控制台格式
func InitLogger(level string, production bool) error {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
		fmt.Fprintf(os.Stderr, "Warning: invalid log level '%s', using 'info': %v\n", level, err)
	}

	var (
		l   *zap.Logger
		err error
	)
	if production {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapLevel)
		l, err = cfg.Build()
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Level = zap.NewAtomicLevelAt(zapLevel)
		l, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize zap logger: %w", err)
	}
	L = l

	L.Info("logger initialized", zap.String("level", zapLevel.String()), zap.Bool("production", production))
	return nil
}

// Sync 退出前刷新缓冲的日志
func Sync() {
	_ = L.Sync()
}
