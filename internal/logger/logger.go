package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger 构建全局日志器，encoding 为 json 时输出生产格式，否则输出控制台格式
func InitLogger(logLevel, encoding string) {
	lgr, err := build(logLevel, encoding)
	if err != nil {
		panic(fmt.Errorf("构建日志器失败: %w", err))
	}

	zap.ReplaceGlobals(lgr)
}

func build(logLevel, encoding string) (*zap.Logger, error) {
	var cfg zap.Config

	if encoding == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.Level.SetLevel(parseLevel(logLevel))

	return cfg.Build()
}

func parseLevel(logLevel string) zapcore.Level {
	switch logLevel {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// Sync 刷新缓冲的日志，退出前调用
func Sync() {
	// stderr 上的 Sync 在部分平台会返回无害的错误
	_ = zap.L().Sync()
}
