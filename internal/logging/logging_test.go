package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 3, 4, 9, 15, 2, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		appName string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "globelogs",
			appName: "globe_scene",
			want:    filepath.Join("globelogs", "globe_scene.20260304_091502.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./globelogs",
			appName: "globe_scene",
			want:    filepath.Join(".", "globelogs", "globe_scene.20260304_091502.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "globe"),
			appName: "globe_scene",
			want:    filepath.Join("/var", "log", "globe", "globe_scene.20260304_091502.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.appName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}
