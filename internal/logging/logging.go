package logging

import "go.uber.org/zap"

func NewSugaredLogger(level, format string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("cannot initialize zap")
	}

	return logger.Sugar()
}
