package game

import "fmt"

// UnrecognizedRomError reports a ROM that matches no supported cartridge,
// or whose bytes do not fit the layout of its generation.
type UnrecognizedRomError struct {
	Reason string
	Title  string
	Size   int
}

func (e *UnrecognizedRomError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("unrecognized ROM %q (%d bytes): %s", e.Title, e.Size, e.Reason)
	}
	return fmt.Sprintf("unrecognized ROM (%d bytes): %s", e.Size, e.Reason)
}
