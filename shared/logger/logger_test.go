package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/config"
	"wellness/shared/logger"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	original := log.Logger
	level := zerolog.GlobalLevel()

	var buf bytes.Buffer
	log.Logger = log.Output(&buf)

	t.Cleanup(func() {
		log.Logger = original
		zerolog.SetGlobalLevel(level)
	})

	return &buf
}

func TestInitLogger(t *testing.T) {
	captureLogs(t)

	logger.InitLogger()

	assert.Equal(t, zerolog.TimeFormatUnix, zerolog.TimeFieldFormat)
	assert.Equal(t, zerolog.TraceLevel, zerolog.GlobalLevel())
}

func TestErrorWithStack(t *testing.T) {
	buf := captureLogs(t)

	logger.ErrorWithStack(errors.New("slot row locked"))

	assert.Contains(t, buf.String(), "slot row locked")
}

func TestErrorWithFields(t *testing.T) {
	buf := captureLogs(t)

	logger.ErrorWithFields(errors.New("slot update failed"), map[string]any{
		"booking_id": "b-1",
		"slot_id":    "s-1",
	})

	output := buf.String()
	assert.Contains(t, output, "slot update failed")
	assert.Contains(t, output, `"booking_id":"b-1"`)
	assert.Contains(t, output, `"slot_id":"s-1"`)
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{level: "debug", want: zerolog.DebugLevel},
		{level: "warn", want: zerolog.WarnLevel},
		{level: "disabled", want: zerolog.Disabled},
		{level: "shouting", want: zerolog.TraceLevel},
		{level: "", want: zerolog.NoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			captureLogs(t)

			cfg := &config.Config{}
			cfg.Server.LogLevel = tt.level

			logger.SetLogLevel(cfg)

			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestSetLogLevel_ProductionWritesJSON(t *testing.T) {
	captureLogs(t)

	cfg := &config.Config{}
	cfg.Server.Env = "production"
	cfg.Server.LogLevel = "info"

	logger.SetLogLevel(cfg)

	var buf bytes.Buffer
	log.Logger = log.Logger.Output(&buf)

	log.Info().Str("booking_id", "b-9").Msg("booking confirmed")

	require.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), `"booking_id":"b-9"`)
	assert.Contains(t, buf.String(), `"message":"booking confirmed"`)
}
