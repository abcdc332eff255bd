package logger

import (
	"marketplace-settlement/internal/config"

	"go.uber.org/zap"
)

func NewZapLog(cfg config.Log) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var zapcfg zap.Config
	if cfg.Format == "console" {
		zapcfg = zap.NewDevelopmentConfig()
	} else {
		zapcfg = zap.NewProductionConfig()
	}
	zapcfg.Level = lvl

	return zapcfg.Build()
}
