//go:build !(amd64 || arm64 || ppc64le || riscv64 || loong64 || s390x)

package vmb

// The struct layouts assume 64-bit pointers. On other targets the build stops
// here instead of passing mis-sized structs to the library.
var _ = vmbRequiresA64BitTarget
