package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBuildTime(t *testing.T) {
	orig := BuildTime
	defer func() { BuildTime = orig }()

	BuildTime = "unknown"
	assert.Equal(t, "unknown", formatBuildTime())

	BuildTime = "2024-03-05T10:20:30Z"
	assert.Equal(t, "Tue Mar 5 10:20:30 2024", formatBuildTime())

	BuildTime = "yesterday"
	assert.Equal(t, "yesterday", formatBuildTime())
}

func TestClientInfo(t *testing.T) {
	info := ClientInfo()
	assert.Equal(t, Version, info["Version"])
	assert.NotEmpty(t, info["SDK"])
	assert.NotEmpty(t, info["GoVersion"])
}
