//go:build !linux && !darwin

package meshfile

import "os"

// fallocateFile sets the file length. Disk blocks may be allocated lazily.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}

func prefaultRegion([]byte) {}

func fadviseSequential(int, int64, int64) {}
