package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestOptionsWithDefaults(t *testing.T) {
	got := Options{MaxOpenConns: 5}.withDefaults()
	assert.Equal(t, 5, got.MaxOpenConns)
	assert.Equal(t, 10, got.MaxIdleConns)
	assert.Equal(t, time.Hour, got.ConnMaxLifetime)
	assert.Equal(t, "warn", got.LogLevel)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"silent":  logger.Silent,
		"ERROR":   logger.Error,
		"info":    logger.Info,
		"warn":    logger.Warn,
		"verbose": logger.Warn,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}
