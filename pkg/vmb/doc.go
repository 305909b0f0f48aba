// Package vmb is a binding to the Allied Vision Vmb C API (Vimba X, libVmbC)
// that needs no cgo. The library is loaded at runtime with purego.
//
// Building with -tags vmb_legacy targets the Vimba 5 API (libVimbaC)
// instead. The two generations differ in struct layout and in a few entry
// points; the exported API of this package is the same for both.
//
// A typical single-frame grab:
//
//	drv, err := vmb.Load(vmb.ResolveLibraryPath(""))
//	if err != nil {
//		return err
//	}
//	defer drv.Close()
//
//	sess, err := vmb.Open(drv)
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//
//	cams, err := sess.Cameras()
//	if err != nil {
//		return err
//	}
//	cam, err := sess.OpenCamera(cams[0], vmb.AccessModeFull)
//	if err != nil {
//		return err
//	}
//	defer cam.Close()
//
//	size, err := cam.FeatureInt(vmb.FeaturePayloadSize)
//	if err != nil {
//		return err
//	}
//	capture, err := cam.NewCapture(make([]byte, size))
//	if err != nil {
//		return err
//	}
//	defer capture.Close()
//	if err := capture.Start(); err != nil {
//		return err
//	}
//	frame, err := capture.Grab(vmb.FeatureAcquisitionStart, 2*time.Second)
//
// Only one Session can be open per process. Closing a Session closes its
// cameras, and closing a Camera tears down its capture.
package vmb
