//go:build darwin

package meshfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes of disk for file with F_PREALLOCATE and
// sets its length. If the reservation fails the file is only truncated.
func fallocateFile(file *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Length:  size,
	}
	_ = unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst)
	return unix.Ftruncate(int(file.Fd()), size)
}

func prefaultRegion([]byte) {}

func fadviseSequential(int, int64, int64) {}
