package util

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, []TableColumn{
		{Header: "ID", Key: "id"},
		{Header: "MODEL", Key: "model"},
	}, []map[string]interface{}{
		{"id": "DEV_000F315B1234", "model": "1800 U-500m"},
		{"id": "\033[36mDEV_2\033[0m", "model": "Mako G-319B"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"ID               MODEL",
		"---------------- -----------",
		"DEV_000F315B1234 1800 U-500m",
		"\033[36mDEV_2\033[0m            Mako G-319B",
	}, lines)
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, []TableColumn{{Header: "ID", Key: "id"}}, nil)
	assert.Equal(t, "No data to display\n", buf.String())
}

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	initLogger(&buf, false)
	GetLogger().Debug("hidden")
	GetLogger().Info("shown", "camera", "DEV_1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "camera=DEV_1")

	buf.Reset()
	initLogger(&buf, true)
	GetLogger().Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestGetLoggerVerboseFromArgs(t *testing.T) {
	args, prev := os.Args, logger
	t.Cleanup(func() {
		os.Args, logger = args, prev
		if prev != nil {
			slog.SetDefault(prev)
		}
	})

	os.Args = []string{"vmbc", "grab", "-V"}
	logger = nil
	assert.True(t, IsVerbose())
	assert.True(t, GetLogger().Enabled(context.Background(), slog.LevelDebug))

	os.Args = []string{"vmbc", "grab"}
	logger = nil
	assert.False(t, IsVerbose())
	assert.False(t, GetLogger().Enabled(context.Background(), slog.LevelDebug))
}
