package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/weft/internal/adapters/logger"
)

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	log := logger.New()
	log.SetOutput(buf)

	log.Info("pipeline started")
	log.Warn("cache entry diverged")
	log.Error(errors.New("gateway unreachable"))

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "pipeline started")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "cache entry diverged")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "gateway unreachable")
}
