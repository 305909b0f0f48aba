package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, 2*time.Second, GetCaptureTimeout())
	assert.Equal(t, "AcquisitionStart", GetTriggerCommand())
	assert.Equal(t, ".", GetOutputDir())
	assert.Empty(t, ConfigFile())
}

func TestLibraryPathFromEnv(t *testing.T) {
	t.Setenv("VIMBAC_LIBDIR", "/opt/Vimba_5_1/VimbaC/DynamicLib/x86_64bit")
	assert.Equal(t, "/opt/Vimba_5_1/VimbaC/DynamicLib/x86_64bit", GetLibraryPath())

	// an explicit path wins over a directory
	t.Setenv("VMBC_LIB_PATH", "/tmp/libVmbC.so")
	assert.Equal(t, "/tmp/libVmbC.so", GetLibraryPath())
}

func TestTimeoutFromEnv(t *testing.T) {
	t.Setenv("VMBC_TIMEOUT", "150ms")
	assert.Equal(t, 150*time.Millisecond, GetCaptureTimeout())
}
