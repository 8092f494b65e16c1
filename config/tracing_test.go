package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOTLPEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		hostport string
		path     string
		insecure bool
	}{
		{raw: "http://localhost:4318", hostport: "localhost:4318", path: "/v1/traces", insecure: true},
		{raw: "https://collector:4318/custom", hostport: "collector:4318", path: "/custom", insecure: false},
		{raw: "collector:4318", hostport: "collector:4318", path: "/v1/traces", insecure: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			hostport, path, insecure, err := parseOTLPEndpoint(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.hostport, hostport)
			assert.Equal(t, tt.path, path)
			assert.Equal(t, tt.insecure, insecure)
		})
	}
}

func TestParseOTLPEndpoint_Rejects(t *testing.T) {
	for _, raw := range []string{"", "grpc://collector:4317", "collector:4318/v1/traces", "http://"} {
		_, _, _, err := parseOTLPEndpoint(raw)
		assert.Error(t, err, raw)
	}
}

func TestSamplingRatio(t *testing.T) {
	assert.Equal(t, 1.0, samplingRatio(""))
	assert.Equal(t, 0.25, samplingRatio("0.25"))
	assert.Equal(t, 1.0, samplingRatio("2"))
	assert.Equal(t, 1.0, samplingRatio("abc"))
}
