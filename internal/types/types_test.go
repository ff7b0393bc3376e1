package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSeverity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected Severity
		wantErr  bool
	}{
		{"error", SeverityError, false},
		{"WARNING", SeverityWarning, false},
		{"warn", SeverityWarning, false},
		{" info ", SeverityInfo, false},
		{"off", SeverityOff, false},
		{"loud", SeverityOff, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSeverity(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestConfigRuleUnmarshal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected Severity
		wantErr  bool
	}{
		{"explicit severity", "rule: {severity: error}\n", SeverityError, false},
		{"empty mapping defaults to warning", "rule: {}\n", SeverityWarning, false},
		{"off", "rule:\n  severity: off\n", SeverityOff, false},
		{"unknown field", "rule: {level: error}\n", SeverityOff, true},
		{"unknown severity", "rule: {severity: loud}\n", SeverityOff, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var rules map[string]ConfigRule
			err := yaml.Unmarshal([]byte(tt.input), &rules)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rules["rule"].Severity)
		})
	}
}

func TestSeverityMarshal(t *testing.T) {
	t.Parallel()
	data, err := yaml.Marshal(ConfigRule{Severity: SeverityInfo})
	require.NoError(t, err)
	assert.Equal(t, "severity: info\n", string(data))

	text, err := SeverityError.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "error", string(text))
}
