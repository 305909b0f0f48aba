package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

var v *viper.Viper

func init() {
	v = viper.New()

	// Set default values
	v.SetDefault("library.path", "")
	v.SetDefault("library.dir", "")
	v.SetDefault("capture.timeout", 2*time.Second)
	v.SetDefault("capture.trigger", "AcquisitionStart")
	v.SetDefault("output.dir", ".")

	// Environment variables
	v.AutomaticEnv()
	v.BindEnv("library.path", "VMBC_LIB_PATH")
	// VIMBAC_LIBDIR is what the Vimba 5 build scripts export
	v.BindEnv("library.dir", "VMBC_LIBDIR", "VIMBAC_LIBDIR")
	v.BindEnv("capture.timeout", "VMBC_TIMEOUT")
	v.BindEnv("capture.trigger", "VMBC_TRIGGER")
	v.BindEnv("output.dir", "VMBC_OUTPUT_DIR")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Look for config in the following paths
	configPaths := []string{
		".",
		filepath.Join(xdg.ConfigHome, "vmbc"),
		"/etc/vmbc",
	}

	for _, path := range configPaths {
		v.AddConfigPath(os.ExpandEnv(path))
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			panic(fmt.Sprintf("Fatal error reading config file: %s", err))
		}
	}
}

// GetLibraryPath returns the configured shared library location. An explicit
// path wins over a library directory; empty means the platform default.
func GetLibraryPath() string {
	if p := v.GetString("library.path"); p != "" {
		return p
	}
	return v.GetString("library.dir")
}

// SetLibraryPath overrides the library location, used by the --lib flag.
func SetLibraryPath(path string) {
	v.Set("library.path", path)
}

// GetCaptureTimeout returns how long to wait for a frame
func GetCaptureTimeout() time.Duration {
	return v.GetDuration("capture.timeout")
}

// GetTriggerCommand returns the command feature that starts acquisition
func GetTriggerCommand() string {
	return v.GetString("capture.trigger")
}

// GetOutputDir returns where captured frames are written
func GetOutputDir() string {
	return v.GetString("output.dir")
}

// ConfigFile returns the config file in use, empty if none was found
func ConfigFile() string {
	return v.ConfigFileUsed()
}
