package rom

import "fmt"

// FileAccessError reports a ROM file that could not be read or written.
type FileAccessError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("rom: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}
