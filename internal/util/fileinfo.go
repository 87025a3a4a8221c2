package util

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileInfo identifies a file revision: the inode survives renames, size and
// mtime change on every append.
type FileInfo struct {
	ModTime int64
	Size    int64
	Inode   uint64
}

// GetFileInfo stats path. Supported on Linux and macOS.
func GetFileInfo(path string) (*FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &FileInfo{
		ModTime: info.ModTime().UnixNano(),
		Size:    info.Size(),
		Inode:   uint64(st.Ino),
	}, nil
}

// Changed reports whether other describes a different revision.
func (fi *FileInfo) Changed(other *FileInfo) bool {
	if fi == nil || other == nil {
		return fi != other
	}
	return fi.Inode != other.Inode || fi.Size != other.Size || fi.ModTime != other.ModTime
}
