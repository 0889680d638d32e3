package types

import (
	"io/fs"
	"time"
)

// ScanResult is the outcome of one directory traversal.
type ScanResult struct {
	// Files holds root-relative paths of files that survived ignore and
	// include/exclude filtering.
	Files []string

	// Directories holds root-relative paths of directories entered.
	Directories []string

	// Duration is the wall-clock time of the traversal.
	Duration time.Duration

	// FilesScanned counts files visited before filtering.
	FilesScanned int

	// DirectoriesScanned counts directories entered, including the root.
	DirectoriesScanned int
}

// FileDetails describes a single file relative to a scan root.
type FileDetails struct {
	Path      string
	RelPath   string
	Name      string
	Extension string
	Size      int64
	Mode      fs.FileMode
	ModTime   time.Time
	IsDir     bool
	IsSymlink bool
}
