package cmd

import (
	"log/slog"

	"github.com/strawlab/vmbc-go/config"
	"github.com/strawlab/vmbc-go/internal/util"
	"github.com/strawlab/vmbc-go/pkg/vmb"
)

// openDriver loads the Vmb library. Tests replace it with an in-memory driver.
var openDriver = func(path string) (vmb.Driver, func() error, error) {
	lib, err := vmb.Load(vmb.ResolveLibraryPath(path))
	if err != nil {
		return nil, nil, err
	}
	return lib, lib.Close, nil
}

func logger() *slog.Logger {
	return util.GetLogger()
}

// withSession starts the API for the duration of fn. fn's error is the
// command's result; shutdown and unload failures only surface when fn
// succeeded.
func withSession(fn func(sess *vmb.Session) error) (err error) {
	drv, unload, err := openDriver(config.GetLibraryPath())
	if err != nil {
		return err
	}
	defer func() {
		firstError(&err, unload(), "unload library")
	}()

	sess, err := vmb.Open(drv)
	if err != nil {
		return err
	}
	logger().Debug("session started", "session", sess.ID(), "sdk", vmb.Generation)
	defer func() {
		firstError(&err, sess.Close(), "shutdown")
	}()

	return fn(sess)
}
