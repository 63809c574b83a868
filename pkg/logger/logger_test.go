package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{Level(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input     string
		expected  Level
		wantError bool
	}{
		{"DEBUG", DEBUG, false},
		{"info", INFO, false},
		{"Warn", WARN, false},
		{"ERROR", ERROR, false},
		{"bogus", INFO, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		assert.Equal(t, tt.expected, got)
		if tt.wantError {
			assert.Error(t, err)
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(Config{Level: WARN, Output: &buf})

	l.Debug("hidden")
	l.Info("also hidden")
	assert.Empty(t, buf.String())

	l.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestLogger_WithFieldsInheritsAndExtends(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithConfig(Config{Level: DEBUG, Output: &buf})

	derived := base.WithField("component", "tracker").WithField("jobId", "job-1")
	derived.Info("dispatching")

	line := buf.String()
	assert.True(t, strings.Contains(line, "component=tracker"))
	assert.True(t, strings.Contains(line, "jobId=job-1"))
}

func TestLogger_QuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(Config{Level: DEBUG, Output: &buf})

	l.Info("msg", "reason", "node left cluster")
	assert.Contains(t, buf.String(), `reason="node left cluster"`)
}
