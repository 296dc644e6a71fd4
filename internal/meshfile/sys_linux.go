//go:build linux

package meshfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// madvPopulateWrite is MADV_POPULATE_WRITE, added in Linux 5.14.
const madvPopulateWrite = 23

// fallocateFile reserves size bytes of disk for file and sets its length.
// Filesystems without fallocate (NFS, tmpfs on old kernels) fall back to
// ftruncate.
func fallocateFile(file *os.File, size int64) error {
	fd := int(file.Fd())
	_ = unix.Fallocate(fd, 0, 0, size)
	return unix.Ftruncate(fd, size)
}

// prefaultRegion populates the pages of a writable mapping up front.
// Older kernels answer EINVAL, which is ignored.
func prefaultRegion(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, madvPopulateWrite)
}

// fadviseSequential announces a sequential scan of the file.
func fadviseSequential(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_SEQUENTIAL)
}
