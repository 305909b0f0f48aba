//go:build amd64 || arm64 || ppc64le || riscv64 || loong64 || s390x

package vmb

import "unsafe"

// A struct shape that drifts from the C header fails to compile here.
var (
	_ [abiCameraInfoSize - unsafe.Sizeof(RawCameraInfo{})]byte
	_ [unsafe.Sizeof(RawCameraInfo{}) - abiCameraInfoSize]byte
	_ [abiFrameSize - unsafe.Sizeof(RawFrame{})]byte
	_ [unsafe.Sizeof(RawFrame{}) - abiFrameSize]byte
	_ [12 - unsafe.Sizeof(VersionInfo{})]byte
)
