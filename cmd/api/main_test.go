package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jang1563/worship-vocal-ai/internal/config"
	"github.com/jang1563/worship-vocal-ai/internal/logger"
)

func TestServe_StartupErrors(t *testing.T) {
	dir := t.TempDir()
	badYAML := filepath.Join(dir, "calibration.yaml")
	require.NoError(t, os.WriteFile(badYAML, []byte("extraction:\n  frame_size: [\n"), 0o600))

	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{
			name:    "missing calibration file",
			cfg:     config.Config{CalibrationFile: filepath.Join(dir, "absent.yaml")},
			wantErr: "read calibration",
		},
		{
			name:    "malformed calibration file",
			cfg:     config.Config{CalibrationFile: badYAML},
			wantErr: "parse calibration",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, logs := logger.NewTestLogger()

			code := serve(tc.cfg, l)

			assert.Equal(t, 1, code)
			entries := logs.FilterMessage("server exited").All()
			require.Len(t, entries, 1)
			assert.Contains(t, entries[0].ContextMap()["error"], tc.wantErr)
		})
	}
}
