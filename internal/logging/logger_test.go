package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogrusLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
	}{
		{"trace", logrus.TraceLevel},
		{"debug", logrus.DebugLevel},
		{"DEBUG", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"bogus", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogrusLevel(tt.input))
		})
	}
}

func TestNewLogger_OffDiscards(t *testing.T) {
	for _, level := range []string{"", "off", "OFF", " none "} {
		var buf bytes.Buffer
		logger := NewLogger(level, &buf)

		logger.Error("should not appear")
		assert.Empty(t, buf.String(), "level %q", level)
		assert.True(t, IsOff(level))
	}
}

func TestNewLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("debug", &buf)

	entry := WithComponent(WithInvocation(logger, "bidpredict"), "predictor")
	entry.Debug("prediction computed")

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	assert.Equal(t, "prediction computed", fields["msg"])
	assert.Equal(t, "bidpredict", fields["service"])
	assert.Equal(t, "predictor", fields["component"])

	id, ok := fields["invocation_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("error", &buf)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithInvocation_UniquePerCall(t *testing.T) {
	logger := NewLogger("off", nil)

	a := WithInvocation(logger, "svc").Data["invocation_id"]
	b := WithInvocation(logger, "svc").Data["invocation_id"]
	assert.NotEqual(t, a, b)
}
