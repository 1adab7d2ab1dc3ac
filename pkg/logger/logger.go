package logger

import (
	"strings"

	"go.uber.org/zap"
)

var sugar *zap.SugaredLogger

// Init builds the process-wide logger. Call once from main before anything logs.
func Init(env string) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		zl = zap.NewNop()
	}
	sugar = zl.Sugar()
}

func ensure() *zap.SugaredLogger {
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	return sugar
}

func Debug(msg string, keysAndValues ...any) {
	ensure().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	ensure().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	ensure().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	ensure().Errorw(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...any) {
	ensure().Fatalw(msg, keysAndValues...)
}

func Sync() {
	_ = ensure().Sync()
}
